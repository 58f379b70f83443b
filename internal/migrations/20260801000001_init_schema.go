package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/lupamo/realtime-collab/internal/db/models"
)

func init() {
	Migrations.MustRegister(up_20260801000001, down_20260801000001)
}

// up_20260801000001 creates the full schema: users, refresh_tokens, teams,
// team_members, projects, tasks, comments.
func up_20260801000001(ctx context.Context, db *bun.DB) error {
	if err := CreateSchema(ctx, db); err != nil {
		return err
	}

	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_refresh_tokens_token_hash ON refresh_tokens(token_hash)`,
		`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user ON refresh_tokens(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_team_members_user ON team_members(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_team_members_team ON team_members(team_id)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_team_id ON projects(team_id, is_archived)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_project_id ON tasks(project_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_assigned_to ON tasks(assigned_to, status)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks(due_date)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_task ON comments(task_id)`,
	}

	fmt.Print(" [up] creating indexes...")
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	fmt.Println(" OK")

	return nil
}

// down_20260801000001 drops all tables, children first.
func down_20260801000001(ctx context.Context, db *bun.DB) error {
	tables := []any{
		(*models.Comment)(nil),
		(*models.Task)(nil),
		(*models.Project)(nil),
		(*models.TeamMember)(nil),
		(*models.Team)(nil),
		(*models.RefreshToken)(nil),
		(*models.User)(nil),
	}

	for _, table := range tables {
		fmt.Print(" [down] dropping table...")
		_, err := db.NewDropTable().
			Model(table).
			IfExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
		fmt.Println(" OK")
	}

	return nil
}

// CreateSchema creates all tables with their foreign keys. Shared with the
// repository test helpers so tests run against the same schema the migration
// produces.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [up] creating users table...")
	_, err := db.NewCreateTable().
		Model((*models.User)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	fmt.Println(" OK")

	fmt.Print(" [up] creating refresh_tokens table...")
	_, err = db.NewCreateTable().
		Model((*models.RefreshToken)(nil)).
		IfNotExists().
		ForeignKey(`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create refresh_tokens table: %w", err)
	}
	fmt.Println(" OK")

	fmt.Print(" [up] creating teams table...")
	_, err = db.NewCreateTable().
		Model((*models.Team)(nil)).
		IfNotExists().
		ForeignKey(`("owner_id") REFERENCES "users" ("id") ON DELETE CASCADE`).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create teams table: %w", err)
	}
	fmt.Println(" OK")

	fmt.Print(" [up] creating team_members table...")
	_, err = db.NewCreateTable().
		Model((*models.TeamMember)(nil)).
		IfNotExists().
		ForeignKey(`("team_id") REFERENCES "teams" ("id") ON DELETE CASCADE`).
		ForeignKey(`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create team_members table: %w", err)
	}
	fmt.Println(" OK")

	fmt.Print(" [up] creating projects table...")
	_, err = db.NewCreateTable().
		Model((*models.Project)(nil)).
		IfNotExists().
		ForeignKey(`("team_id") REFERENCES "teams" ("id") ON DELETE CASCADE`).
		ForeignKey(`("created_by") REFERENCES "users" ("id") ON DELETE SET NULL`).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create projects table: %w", err)
	}
	fmt.Println(" OK")

	fmt.Print(" [up] creating tasks table...")
	_, err = db.NewCreateTable().
		Model((*models.Task)(nil)).
		IfNotExists().
		ForeignKey(`("project_id") REFERENCES "projects" ("id") ON DELETE CASCADE`).
		ForeignKey(`("assigned_to") REFERENCES "users" ("id") ON DELETE SET NULL`).
		ForeignKey(`("created_by") REFERENCES "users" ("id") ON DELETE SET NULL`).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create tasks table: %w", err)
	}
	fmt.Println(" OK")

	fmt.Print(" [up] creating comments table...")
	_, err = db.NewCreateTable().
		Model((*models.Comment)(nil)).
		IfNotExists().
		ForeignKey(`("task_id") REFERENCES "tasks" ("id") ON DELETE CASCADE`).
		ForeignKey(`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create comments table: %w", err)
	}
	fmt.Println(" OK")

	return nil
}
