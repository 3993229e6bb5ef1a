package models

import (
	"database/sql"
	"errors"
	"strings"
)

func CreateUser(db *sql.DB, email, name, passwordHash string) error {
	_, err := db.Exec(`INSERT INTO user (email, name, password_hash) VALUES (?, ?, ?)`, email, name, passwordHash)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: user.email") {
		return ErrDuplicateEmail
	}
	return err
}

// GetUserByEmail returns the user with the given email, or nil when no such
// user exists.
func GetUserByEmail(db *sql.DB, email string) (*User, error) {
	row := db.QueryRow(`SELECT id, email, name, password_hash, created, profile_pic, admin, premium FROM user WHERE email = ?`, email)
	return scanUser(row)
}

// GetUserByID returns the user with the given id, or nil when no such user
// exists.
func GetUserByID(db *sql.DB, id int) (*User, error) {
	row := db.QueryRow(`SELECT id, email, name, password_hash, created, profile_pic, admin, premium FROM user WHERE id = ?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Created, &u.ProfilePic, &u.Admin, &u.Premium)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
