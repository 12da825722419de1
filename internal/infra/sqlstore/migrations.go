package sqlstore

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Migrations holds the schema history, applied in name order.
var Migrations = migrate.NewMigrations()

func init() {
	Migrations.Add(migrate.Migration{
		Name:    "20241201000001",
		Comment: "create_tables",
		Up:      createTables,
		Down:    dropTables,
	})
	Migrations.Add(migrate.Migration{
		Name:    "20241201000002",
		Comment: "create_indexes",
		Up:      createIndexes,
		Down:    dropIndexes,
	})
}

func createTables(ctx context.Context, db *bun.DB) error {
	steps := []*bun.CreateTableQuery{
		db.NewCreateTable().Model((*quizRow)(nil)).IfNotExists(),
		db.NewCreateTable().Model((*questionRow)(nil)).IfNotExists().
			ForeignKey(`("quiz_id") REFERENCES "quizzes" ("id") ON DELETE CASCADE`),
		db.NewCreateTable().Model((*userRow)(nil)).IfNotExists(),
		db.NewCreateTable().Model((*attemptRow)(nil)).IfNotExists().
			ForeignKey(`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`).
			ForeignKey(`("quiz_id") REFERENCES "quizzes" ("id") ON DELETE CASCADE`),
		db.NewCreateTable().Model((*counterRow)(nil)).IfNotExists(),
	}
	for _, q := range steps {
		if _, err := q.Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func dropTables(ctx context.Context, db *bun.DB) error {
	for _, model := range []interface{}{
		(*attemptRow)(nil),
		(*questionRow)(nil),
		(*userRow)(nil),
		(*quizRow)(nil),
		(*counterRow)(nil),
	} {
		if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func createIndexes(ctx context.Context, db *bun.DB) error {
	steps := []*bun.CreateIndexQuery{
		db.NewCreateIndex().Model((*questionRow)(nil)).Index("questions_quiz_id_idx").
			Column("quiz_id").IfNotExists(),
		db.NewCreateIndex().Model((*attemptRow)(nil)).Index("attempts_quiz_score_idx").
			Column("quiz_id", "score_percentage", "created_at").IfNotExists(),
		db.NewCreateIndex().Model((*attemptRow)(nil)).Index("attempts_user_id_idx").
			Column("user_id").IfNotExists(),
		db.NewCreateIndex().Model((*quizRow)(nil)).Index("quizzes_category_idx").
			Column("category").IfNotExists(),
	}
	for _, q := range steps {
		if _, err := q.Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func dropIndexes(ctx context.Context, db *bun.DB) error {
	for _, name := range []string{
		"questions_quiz_id_idx",
		"attempts_quiz_score_idx",
		"attempts_user_id_idx",
		"quizzes_category_idx",
	} {
		if _, err := db.NewDropIndex().Index(name).IfExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Migrate applies every pending migration.
func Migrate(ctx context.Context, db *bun.DB) error {
	migrator := migrate.NewMigrator(db, Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if group.IsZero() {
		log.Info().Msg("no new migrations to apply")
		return nil
	}
	log.Info().Str("group", group.String()).Msg("migrations applied")
	return nil
}
