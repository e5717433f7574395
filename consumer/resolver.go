package consumer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Operator-entered enumerator ids and building tokens are matched on their
// first 8 characters, case-insensitively, because field devices truncate and
// re-case identifiers.
const identifierPrefixLen = 8

// RegistryResolver validates reference candidates against the ward, area,
// enumerator and building-token registries. All methods are read-only; a
// miss is a valid=false result, never an error. Token allocation is a
// separate, effectful call made inside the promotion transaction.
type RegistryResolver interface {
	ResolveWard(ctx context.Context, wardNumber int) (int64, bool, error)
	ResolveArea(ctx context.Context, code string) (int64, bool, error)
	ResolveEnumerator(ctx context.Context, candidate string) (string, bool, error)
	ResolveBuildingToken(ctx context.Context, candidate string) (string, bool, error)
}

// registryQuerier is the read surface the resolver needs; *pgxpool.Pool
// satisfies it.
type registryQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresResolver resolves references against the registry tables.
type PostgresResolver struct {
	db registryQuerier
}

func NewPostgresResolver(db *pgxpool.Pool) *PostgresResolver {
	return &PostgresResolver{db: db}
}

func (r *PostgresResolver) ResolveWard(ctx context.Context, wardNumber int) (int64, bool, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`SELECT ward_number FROM wards WHERE ward_number = $1`, wardNumber).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("error resolving ward %d: %w", wardNumber, err)
	}
	return id, true, nil
}

func (r *PostgresResolver) ResolveArea(ctx context.Context, code string) (int64, bool, error) {
	numericCode, err := strconv.Atoi(strings.TrimSpace(code))
	if err != nil {
		return 0, false, nil
	}

	var id int64
	err = r.db.QueryRow(ctx,
		`SELECT id FROM survey_areas WHERE code = $1`, numericCode).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("error resolving area %s: %w", code, err)
	}
	return id, true, nil
}

func (r *PostgresResolver) ResolveEnumerator(ctx context.Context, candidate string) (string, bool, error) {
	return r.resolveByPrefix(ctx, candidate,
		`SELECT id FROM enumerators WHERE LOWER(LEFT(id, length($1))) = $1 ORDER BY id`, "enumerator")
}

func (r *PostgresResolver) ResolveBuildingToken(ctx context.Context, candidate string) (string, bool, error) {
	return r.resolveByPrefix(ctx, candidate,
		`SELECT token FROM building_tokens WHERE LOWER(LEFT(token, length($1))) = $1 ORDER BY token`, "building token")
}

// resolveByPrefix matches a truncated/re-cased candidate against its
// canonical identifier space. The canonical side is cut to the candidate's
// own length, so a candidate shorter than the 8-character cap still matches
// longer canonical ids. Ordering makes a multi-match deterministic; the
// first canonical id wins and the collision is logged (a prefix is not
// guaranteed unique).
func (r *PostgresResolver) resolveByPrefix(ctx context.Context, candidate, query, kind string) (string, bool, error) {
	prefix := IdentifierPrefix(candidate)
	if prefix == "" {
		return "", false, nil
	}

	rows, err := r.db.Query(ctx, query, prefix)
	if err != nil {
		return "", false, fmt.Errorf("error resolving %s %q: %w", kind, candidate, err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", false, fmt.Errorf("error scanning %s match: %w", kind, err)
		}
		matches = append(matches, id)
	}
	if err := rows.Err(); err != nil {
		return "", false, fmt.Errorf("error reading %s matches: %w", kind, err)
	}

	if len(matches) == 0 {
		return "", false, nil
	}
	if len(matches) > 1 {
		log.Printf("%s prefix %q matched %d canonical ids, keeping %s",
			kind, prefix, len(matches), matches[0])
	}
	return matches[0], true, nil
}

// AllocateToken marks a resolved building token as allocated. The status
// guard keeps a concurrently promoted submission from double-claiming the
// token; allocation of an already-allocated token is a no-op, which
// preserves at-least-once semantics across promotion retries.
func AllocateToken(ctx context.Context, tx pgx.Tx, token string) error {
	_, err := tx.Exec(ctx,
		`UPDATE building_tokens SET status = 'allocated', allocated_at = NOW()
         WHERE token = $1 AND status = 'unallocated'`, token)
	if err != nil {
		return fmt.Errorf("error allocating building token %s: %w", token, err)
	}
	return nil
}

// IdentifierPrefix normalizes an operator-entered identifier to the lowered
// prefix used for matching. Returns "" for blank candidates.
func IdentifierPrefix(candidate string) string {
	c := strings.ToLower(strings.TrimSpace(candidate))
	if c == "" {
		return ""
	}
	if len(c) > identifierPrefixLen {
		c = c[:identifierPrefixLen]
	}
	return c
}
