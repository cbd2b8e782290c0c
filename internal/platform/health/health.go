// Pacote health expõe o readiness da API e do worker checando Postgres e Redis.
package health

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// Dependencia é uma checagem nomeada; a ordem de registro define a ordem de verificação.
type Dependencia struct {
	Nome string
	Ping func(ctx context.Context) error
}

type Checker struct {
	dependencias []Dependencia
	timeout      time.Duration
}

func NewChecker(db *sql.DB, client *redis.Client) *Checker {
	c := &Checker{timeout: 2 * time.Second}
	if db != nil {
		c.dependencias = append(c.dependencias, Dependencia{Nome: "postgres", Ping: db.PingContext})
	}
	if client != nil {
		c.dependencias = append(c.dependencias, Dependencia{
			Nome: "redis",
			Ping: func(ctx context.Context) error { return client.Ping(ctx).Err() },
		})
	}
	return c
}

func (c *Checker) Verificar(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	for _, dep := range c.dependencias {
		if err := ctx.Err(); err != nil {
			return dep.Nome, err
		}
		if err := dep.Ping(ctx); err != nil {
			return dep.Nome, err
		}
	}
	return "", nil
}

type status struct {
	Status      string `json:"status"`
	Dependencia string `json:"dependencia,omitempty"`
}

func (c *Checker) ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if nome, err := c.Verificar(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(status{Status: "indisponivel", Dependencia: nome})
			return
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(status{Status: "ok"})
	}
}
