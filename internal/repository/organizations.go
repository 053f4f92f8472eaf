package repository

import (
	"context"
	"time"

	"github.com/team3-dev/auto-shift/backend/internal/domain"
)

func (r *Repository) CreateOrganization(org *domain.Organization) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO organizations (name)
		VALUES ($1)
		RETURNING id, created_at
	`

	return r.dbpool.QueryRowContext(ctx, query, org.Name).Scan(&org.ID, &org.CreatedAt)
}

func (r *Repository) GetOrganizationByName(name string) (*domain.Organization, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, created_at FROM organizations WHERE name = $1
	`

	org := &domain.Organization{Name: name}
	if err := r.dbpool.QueryRowContext(ctx, query, name).Scan(&org.ID, &org.CreatedAt); err != nil {
		return nil, err
	}

	return org, nil
}

func (r *Repository) CreateClient(client *domain.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO clients (organization_id, name)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	return r.dbpool.QueryRowContext(ctx, query, client.OrganizationID, client.Name).Scan(&client.ID, &client.CreatedAt)
}
