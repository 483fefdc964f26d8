package http_test

import (
	"strconv"

	"github.com/aussiebroadwan/tally/internal/tally/domain"
)

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func domainUser() domain.User {
	return domain.User{ID: "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV", Username: "alice", Email: "alice@example.com"}
}
