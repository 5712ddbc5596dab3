package store

import (
	"database/sql"
	"fmt"
	"time"
)

// SaveCookie inserts or replaces one cookie for origin.
func (s *Store) SaveCookie(c Cookie) error {
	now := time.Now().UTC().Format(time.RFC3339)
	var expires sql.NullString
	if c.Expires != nil {
		expires = sql.NullString{String: c.Expires.UTC().Format(time.RFC3339), Valid: true}
	}
	_, err := s.db.Exec(
		`INSERT INTO session_cookies (origin, name, value, expires_at, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(origin, name) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at, updated_at = excluded.updated_at`,
		c.Origin, c.Name, c.Value, expires, now,
	)
	if err != nil {
		return fmt.Errorf("save cookie %q: %w", c.Name, err)
	}
	return nil
}

func (s *Store) DeleteCookie(origin, name string) error {
	if _, err := s.db.Exec(`DELETE FROM session_cookies WHERE origin = ? AND name = ?`, origin, name); err != nil {
		return fmt.Errorf("delete cookie %q: %w", name, err)
	}
	return nil
}

// ClearCookies forgets every cookie stored for origin.
func (s *Store) ClearCookies(origin string) error {
	if _, err := s.db.Exec(`DELETE FROM session_cookies WHERE origin = ?`, origin); err != nil {
		return fmt.Errorf("clear cookies: %w", err)
	}
	return nil
}

// ListCookies returns the unexpired cookies for origin, ordered by name.
func (s *Store) ListCookies(origin string, now time.Time) ([]Cookie, error) {
	rows, err := s.db.Query(
		`SELECT origin, name, value, expires_at, updated_at FROM session_cookies
		 WHERE origin = ? AND (expires_at IS NULL OR expires_at > ?) ORDER BY name`,
		origin, now.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("list cookies: %w", err)
	}
	defer rows.Close()

	var cookies []Cookie
	for rows.Next() {
		var c Cookie
		var expires sql.NullString
		var updatedAt string
		if err := rows.Scan(&c.Origin, &c.Name, &c.Value, &expires, &updatedAt); err != nil {
			return nil, err
		}
		if expires.Valid {
			if t, err := time.Parse(time.RFC3339, expires.String); err == nil {
				c.Expires = &t
			}
		}
		c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		cookies = append(cookies, c)
	}
	return cookies, rows.Err()
}
