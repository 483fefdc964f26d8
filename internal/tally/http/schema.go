package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/aussiebroadwan/tally/pkg/httpx"
)

var errInvalidBody = errors.New("invalid request body")

// bodySchema validates request bodies against a JSON Schema reflected from a
// wire type. The schema is compiled on first use.
type bodySchema struct {
	name string
	v    any

	// extend adjusts the reflected schema before it is compiled.
	extend func(*jsonschema.Schema)

	once sync.Once
	sch  *jschema.Schema
	err  error
}

func newBodySchema(name string, v any) *bodySchema {
	return &bodySchema{name: name, v: v}
}

// Generate reflects the JSON Schema document for the wire type.
func (b *bodySchema) Generate() ([]byte, error) {
	r := jsonschema.Reflector{
		Anonymous:                  true,
		DoNotReference:             true,
		AllowAdditionalProperties:  true,
		RequiredFromJSONSchemaTags: true,
	}
	sch := r.Reflect(b.v)
	if b.extend != nil {
		b.extend(sch)
	}
	return json.Marshal(sch)
}

func (b *bodySchema) compiled() (*jschema.Schema, error) {
	b.once.Do(func() {
		raw, err := b.Generate()
		if err != nil {
			b.err = err
			return
		}

		doc, err := jschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			b.err = fmt.Errorf("failed to parse schema JSON: %w", err)
			return
		}

		c := jschema.NewCompiler()
		if err := c.AddResource(b.name, doc); err != nil {
			b.err = fmt.Errorf("failed to add schema resource: %w", err)
			return
		}
		b.sch, b.err = c.Compile(b.name)
	})
	return b.sch, b.err
}

// Decode reads the request body, validates it and unmarshals it into dst.
// Returned errors wrap errInvalidBody when the client is at fault.
func (b *bodySchema) Decode(r *http.Request, dst any) error {
	var raw json.RawMessage
	if err := httpx.DecodeJSON(r, &raw); err != nil {
		return fmt.Errorf("%w: %w", errInvalidBody, err)
	}

	sch, err := b.compiled()
	if err != nil {
		return err
	}

	inst, err := jschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidBody, err)
	}
	if err := sch.Validate(inst); err != nil {
		var verr *jschema.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("%w: %s", errInvalidBody, leafMessage(verr))
		}
		return fmt.Errorf("%w: %w", errInvalidBody, err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %w", errInvalidBody, err)
	}
	return nil
}

// nullable lets the named string properties also be null.
func nullable(props ...string) func(*jsonschema.Schema) {
	return func(s *jsonschema.Schema) {
		for _, name := range props {
			p, ok := s.Properties.Get(name)
			if !ok {
				continue
			}
			p.Type = ""
			p.OneOf = []*jsonschema.Schema{{Type: "string"}, {Type: "null"}}
		}
	}
}

// leafMessage names the field and keyword of the most specific failure, for
// example "username failed minLength".
func leafMessage(verr *jschema.ValidationError) string {
	for len(verr.Causes) > 0 {
		verr = verr.Causes[0]
	}

	field := strings.Join(verr.InstanceLocation, ".")
	if field == "" {
		field = "body"
	}
	keyword := "schema"
	if verr.ErrorKind != nil {
		keyword = strings.Join(verr.ErrorKind.KeywordPath(), "/")
	}
	return field + " failed " + keyword
}
