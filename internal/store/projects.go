package store

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/Zachkp/zach-portfolio/internal/catalog"
)

var _ catalog.Source = (*Store)(nil)

// ImportDocument replaces every project and category with doc's, keeping
// doc's order.
func (s *Store) ImportDocument(ctx context.Context, doc *catalog.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM projects`); err != nil {
		return fmt.Errorf("clear projects: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM categories`); err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}

	for _, p := range doc.Projects {
		techs := p.Technologies
		if techs == nil {
			techs = []string{}
		}
		encoded, err := json.Marshal(techs)
		if err != nil {
			return fmt.Errorf("encode technologies for %s: %w", p.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO projects (id, title, description, category, technologies, completion_date, featured, demo_url, github_url)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, p.ID, p.Title, p.Description, p.Category, string(encoded), p.CompletionDate.String(), p.Featured, p.DemoURL, p.GithubURL)
		if err != nil {
			return fmt.Errorf("insert project %s: %w", p.ID, err)
		}
	}

	for _, c := range doc.Categories {
		_, err := tx.ExecContext(ctx, `INSERT INTO categories (id, name, count) VALUES (?, ?, ?)`, c.ID, c.Name, c.Count)
		if err != nil {
			return fmt.Errorf("insert category %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

// Fetch reads the stored collection. It lets the store back a catalog.
func (s *Store) Fetch(ctx context.Context) (*catalog.Document, error) {
	doc := &catalog.Document{Projects: []catalog.Project{}, Categories: []catalog.Category{}}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, category, technologies, completion_date, featured, demo_url, github_url
		FROM projects
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p     catalog.Project
			techs string
			date  string
		)
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Category, &techs, &date, &p.Featured, &p.DemoURL, &p.GithubURL); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		if err := json.Unmarshal([]byte(techs), &p.Technologies); err != nil {
			return nil, fmt.Errorf("decode technologies for %s: %w", p.ID, err)
		}
		if date != "" {
			if p.CompletionDate, err = catalog.ParseDate(date); err != nil {
				return nil, fmt.Errorf("project %s: %w", p.ID, err)
			}
		}
		doc.Projects = append(doc.Projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}

	catRows, err := s.db.QueryContext(ctx, `SELECT id, name, count FROM categories ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer catRows.Close()

	for catRows.Next() {
		var c catalog.Category
		if err := catRows.Scan(&c.ID, &c.Name, &c.Count); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		doc.Categories = append(doc.Categories, c)
	}
	if err := catRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return doc, nil
}
