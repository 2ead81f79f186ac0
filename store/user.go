package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Gilad-Weinberger/netta-nails/models"
)

// ErrEmailTaken means a user with that email already exists.
var ErrEmailTaken = errors.New("email already registered")

func (s *Store) CreateUser(email, passwordHash, name, phone string) (*models.User, error) {
	if _, err := s.GetUserByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	row := map[string]interface{}{
		"id":            uuid.New().String(),
		"email":         email,
		"password_hash": passwordHash,
		"name":          name,
		"phone":         phone,
		"role":          models.RoleUser,
		"created_at":    time.Now().UTC().Format(time.RFC3339),
	}

	data, _, err := s.supabase.From("users").
		Insert(row, false, "", "", "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	users, err := decodeUsers(data)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("create user: no row returned")
	}
	return &users[0], nil
}

func (s *Store) GetUserByEmail(email string) (*models.User, error) {
	data, _, err := s.supabase.From("users").
		Select("*", "", false).
		Eq("email", email).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	users, err := decodeUsers(data)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrNotFound
	}
	return &users[0], nil
}

func (s *Store) GetUserByID(id string) (*models.User, error) {
	data, _, err := s.supabase.From("users").
		Select("*", "", false).
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	users, err := decodeUsers(data)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrNotFound
	}
	return &users[0], nil
}

func decodeUsers(data []byte) ([]models.User, error) {
	var users []models.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}
