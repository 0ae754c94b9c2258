package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pressly/goose/v3"
)

const DefaultDir = "pkg/migrate/migrations"

// Step is one migration goose applied, rolled back, or reported on.
type Step struct {
	Version  int64
	Path     string
	Action   string
	Duration time.Duration
}

func (s Step) String() string {
	return fmt.Sprintf("%-8s %d %s (%s)", s.Action, s.Version, s.Path, s.Duration.Round(time.Millisecond))
}

// newProvider binds goose to the directory; the SQL files are written for postgres only.
func newProvider(db *sql.DB, dir string) (*goose.Provider, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	if dir == "" {
		return nil, errors.New("dir is required")
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db, os.DirFS(dir))
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return provider, nil
}

// Run executes up, down, redo or status and returns what goose touched.
func Run(ctx context.Context, db *sql.DB, dir, command string) ([]Step, error) {
	provider, err := newProvider(db, dir)
	if err != nil {
		return nil, err
	}
	defer provider.Close()

	switch command {
	case "up":
		results, err := provider.Up(ctx)
		return stepsFrom(results), wrapGoose(command, err)
	case "down":
		result, err := provider.Down(ctx)
		return stepsFrom(nonNil(result)), wrapGoose(command, err)
	case "redo":
		down, err := provider.Down(ctx)
		if err != nil {
			return stepsFrom(nonNil(down)), wrapGoose(command, err)
		}
		up, err := provider.UpByOne(ctx)
		return stepsFrom(nonNil(down, up)), wrapGoose(command, err)
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return nil, wrapGoose(command, err)
		}
		steps := make([]Step, 0, len(statuses))
		for _, st := range statuses {
			steps = append(steps, Step{Version: st.Source.Version, Path: st.Source.Path, Action: string(st.State)})
		}
		return steps, nil
	default:
		return nil, fmt.Errorf("unsupported goose command %q", command)
	}
}

// MigrateToVersion moves the schema up or down until the database sits at targetVersion.
func MigrateToVersion(ctx context.Context, db *sql.DB, dir, targetVersion string) ([]Step, error) {
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil || target < 0 {
		return nil, fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS)", targetVersion)
	}
	provider, err := newProvider(db, dir)
	if err != nil {
		return nil, err
	}
	defer provider.Close()

	current, err := provider.GetDBVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("get db version: %w", err)
	}
	switch {
	case current < target:
		results, err := provider.UpTo(ctx, target)
		return stepsFrom(results), wrapGoose(fmt.Sprintf("up-to %d", target), err)
	case current > target:
		results, err := provider.DownTo(ctx, target)
		return stepsFrom(results), wrapGoose(fmt.Sprintf("down-to %d", target), err)
	}
	return nil, nil
}

func nonNil(results ...*goose.MigrationResult) []*goose.MigrationResult {
	out := results[:0]
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func stepsFrom(results []*goose.MigrationResult) []Step {
	steps := make([]Step, 0, len(results))
	for _, r := range results {
		if r == nil || r.Source == nil {
			continue
		}
		steps = append(steps, Step{
			Version:  r.Source.Version,
			Path:     r.Source.Path,
			Action:   r.Direction,
			Duration: r.Duration,
		})
	}
	return steps
}

func wrapGoose(command string, err error) error {
	if err == nil {
		return nil
	}
	// goose reports "nothing to roll back" as an error; an empty schema is not a failure.
	if errors.Is(err, goose.ErrNoNextVersion) || errors.Is(err, goose.ErrNoCurrentVersion) {
		return nil
	}
	return fmt.Errorf("goose %s: %w", command, err)
}
