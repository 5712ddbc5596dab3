package store

import (
	"fmt"
	"time"
)

func (s *Store) SaveProfile(p Profile) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO profile (origin, user_id, name, email, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(origin) DO UPDATE SET user_id = excluded.user_id, name = excluded.name,
		 email = excluded.email, updated_at = excluded.updated_at`,
		p.Origin, p.UserID, p.Name, p.Email, now,
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (s *Store) GetProfile(origin string) (*Profile, error) {
	p := &Profile{}
	var updatedAt string
	err := s.db.QueryRow(
		`SELECT origin, user_id, name, email, updated_at FROM profile WHERE origin = ?`, origin,
	).Scan(&p.Origin, &p.UserID, &p.Name, &p.Email, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return p, nil
}

func (s *Store) DeleteProfile(origin string) error {
	if _, err := s.db.Exec(`DELETE FROM profile WHERE origin = ?`, origin); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}
