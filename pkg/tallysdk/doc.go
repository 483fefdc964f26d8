// Package tallysdk is a Go client for the tally HTTP API.
//
// The request and response types in this package are the wire contract; the
// server encodes and decodes the same types, so a change here is a change to
// the API.
//
//	c := tallysdk.NewClient("http://localhost:8080")
//	s, err := c.Login(ctx, "alice", "s3cret")
//	if err != nil { ... }
//	todos, err := s.ListTodos(ctx)
package tallysdk
