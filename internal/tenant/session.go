package tenant

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// SessionOpener builds per-request connections to garage databases. The DSN
// template carries credentials and host; the database name comes from the
// resolved selection.
type SessionOpener struct {
	registry    *Registry
	dsnTemplate string
	pingTimeout time.Duration
}

func NewSessionOpener(registry *Registry, dsnTemplate string, pingTimeout time.Duration) (*SessionOpener, error) {
	if registry == nil {
		return nil, fmt.Errorf("garage registry is required")
	}
	if dsnTemplate == "" {
		return nil, fmt.Errorf("tenant dsn template is required")
	}
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	return &SessionOpener{registry: registry, dsnTemplate: dsnTemplate, pingTimeout: pingTimeout}, nil
}

// Open resolves the selection and opens a session bound to that garage's
// database. Callers own the returned handle and must close it on every exit
// path.
func (o *SessionOpener) Open(ctx context.Context, selection Selection) (*sql.DB, error) {
	resolved, err := o.registry.Resolve(selection)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", fmt.Sprintf(o.dsnTemplate, resolved.Name))
	if err != nil {
		return nil, fmt.Errorf("open garage db %q: %w", resolved.Name, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, o.pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping garage db %q: %w", resolved.Name, err)
	}
	return db, nil
}
