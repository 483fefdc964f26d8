//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aussiebroadwan/tally/internal/tally/domain"
	"github.com/aussiebroadwan/tally/internal/tally/store"
	"github.com/aussiebroadwan/tally/internal/tally/store/drivers/postgres"
)

// setupPostgresContainer starts a PostgreSQL container with migrations applied.
func setupPostgresContainer() (*postgres.Store, func(), error) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("tally_test"),
		tcpostgres.WithUsername("tally"),
		tcpostgres.WithPassword("tally"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, nil, err
	}

	s, err := postgres.NewStore(ctx, connStr)
	if err != nil {
		return nil, nil, err
	}
	if err := s.ApplyMigrations(); err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		_ = s.Close()
		_ = container.Terminate(ctx)
	}
	return s, cleanup, nil
}

var _ = Describe("Postgres store", func() {
	var (
		s       *postgres.Store
		cleanup func()
		ctx     context.Context
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		s, cleanup, err = setupPostgresContainer()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		cleanup()
	})

	It("re-applies migrations without error", func() {
		Expect(s.ApplyMigrations()).To(Succeed())
		Expect(s.Ping(ctx)).To(Succeed())
	})

	Describe("Users", func() {
		It("creates and looks up users", func() {
			alice, err := s.Users().CreateUser(ctx, domain.User{
				Username: "alice", Email: "alice@example.com", PasswordHash: "digest",
			})
			Expect(err).NotTo(HaveOccurred())

			got, err := s.Users().GetUserByUsername(ctx, "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(alice.ID))

			got, err = s.Users().FindByUsernameOrEmail(ctx, "nobody", "alice@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Username).To(Equal("alice"))
		})

		It("rejects duplicate usernames and emails", func() {
			_, err := s.Users().CreateUser(ctx, domain.User{
				Username: "alice", Email: "alice@example.com", PasswordHash: "digest",
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = s.Users().CreateUser(ctx, domain.User{
				Username: "alice", Email: "other@example.com", PasswordHash: "digest",
			})
			Expect(err).To(MatchError(store.ErrAlreadyExists))

			_, err = s.Users().CreateUser(ctx, domain.User{
				Username: "other", Email: "alice@example.com", PasswordHash: "digest",
			})
			Expect(err).To(MatchError(store.ErrAlreadyExists))
		})

		It("lets exactly one concurrent duplicate through", func() {
			var (
				wg      sync.WaitGroup
				mu      sync.Mutex
				created int
			)
			for range 10 {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					_, err := s.Users().CreateUser(ctx, domain.User{
						Username: "bob", Email: "bob@example.com", PasswordHash: "digest",
					})
					if err == nil {
						mu.Lock()
						created++
						mu.Unlock()
						return
					}
					Expect(err).To(MatchError(store.ErrAlreadyExists))
				}()
			}
			wg.Wait()
			Expect(created).To(Equal(1))
		})
	})

	Describe("Todos", func() {
		It("supports the full lifecycle", func() {
			milk, err := s.Todos().CreateTodo(ctx, domain.Todo{Name: "milk"})
			Expect(err).NotTo(HaveOccurred())
			Expect(milk.ID).To(BeNumerically(">", 0))

			Expect(s.Todos().UpdateTodo(ctx, milk.ID, "oat milk", true)).To(Succeed())

			done, err := s.Todos().ListCompleteTodos(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(done).To(HaveLen(1))
			Expect(done[0].Name).To(Equal("oat milk"))

			Expect(s.Todos().DeleteTodo(ctx, milk.ID)).To(Succeed())
			_, err = s.Todos().GetTodo(ctx, milk.ID)
			Expect(err).To(MatchError(store.ErrNotFound))
		})

		It("commits work done inside WithTx", func() {
			err := s.WithTx(ctx, func(tx store.Tx) error {
				_, err := tx.Todos().CreateTodo(ctx, domain.Todo{Name: "eggs"})
				return err
			})
			Expect(err).NotTo(HaveOccurred())

			all, err := s.Todos().ListTodos(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(1))
		})
	})
})
