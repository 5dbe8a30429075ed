package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the catalog store.
var Migrations = migrate.NewGroup("palisade")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_workspaces",
			Version: "20250601000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS palisade_workspaces (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL UNIQUE,
    isolated        BOOLEAN NOT NULL DEFAULT FALSE
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS palisade_workspaces`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_namespaces",
			Version: "20250601000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS palisade_namespaces (
    id              TEXT PRIMARY KEY,
    prefix          TEXT NOT NULL UNIQUE,
    uri             TEXT NOT NULL,
    isolated        BOOLEAN NOT NULL DEFAULT FALSE
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS palisade_namespaces`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_stores",
			Version: "20250601000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS palisade_stores (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL,
    kind            TEXT NOT NULL,
    workspace_id    TEXT REFERENCES palisade_workspaces(id) ON DELETE CASCADE,
    enabled         BOOLEAN NOT NULL DEFAULT TRUE,

    UNIQUE(workspace_id, name)
);

CREATE INDEX IF NOT EXISTS idx_palisade_stores_workspace ON palisade_stores (workspace_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS palisade_stores`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_resources",
			Version: "20250601000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS palisade_resources (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL,
    title           TEXT NOT NULL DEFAULT '',
    kind            TEXT NOT NULL,
    namespace_id    TEXT REFERENCES palisade_namespaces(id) ON DELETE CASCADE,
    store_id        TEXT REFERENCES palisade_stores(id) ON DELETE CASCADE,
    enabled         BOOLEAN NOT NULL DEFAULT TRUE,

    UNIQUE(namespace_id, name)
);

CREATE INDEX IF NOT EXISTS idx_palisade_resources_store ON palisade_resources (store_id);
CREATE INDEX IF NOT EXISTS idx_palisade_resources_namespace ON palisade_resources (namespace_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS palisade_resources`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_layers",
			Version: "20250601000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS palisade_layers (
    id                  TEXT PRIMARY KEY,
    name                TEXT NOT NULL UNIQUE,
    resource_id         TEXT REFERENCES palisade_resources(id) ON DELETE CASCADE,
    default_style_id    TEXT,
    style_ids           JSONB NOT NULL DEFAULT '[]',
    advertised          BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE INDEX IF NOT EXISTS idx_palisade_layers_resource ON palisade_layers (resource_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS palisade_layers`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_layer_groups",
			Version: "20250601000006",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS palisade_layer_groups (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL,
    mode            TEXT NOT NULL,
    workspace_id    TEXT REFERENCES palisade_workspaces(id) ON DELETE CASCADE,
    root_layer_id   TEXT,
    members         JSONB NOT NULL DEFAULT '[]',

    UNIQUE(workspace_id, name)
);

CREATE INDEX IF NOT EXISTS idx_palisade_layer_groups_workspace ON palisade_layer_groups (workspace_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS palisade_layer_groups`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_styles",
			Version: "20250601000007",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS palisade_styles (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL,
    workspace_id    TEXT REFERENCES palisade_workspaces(id) ON DELETE CASCADE,
    filename        TEXT NOT NULL DEFAULT '',

    UNIQUE(workspace_id, name)
);

CREATE INDEX IF NOT EXISTS idx_palisade_styles_workspace ON palisade_styles (workspace_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS palisade_styles`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_maps",
			Version: "20250601000008",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS palisade_maps (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL UNIQUE,
    layer_ids       JSONB NOT NULL DEFAULT '[]',
    enabled         BOOLEAN NOT NULL DEFAULT TRUE
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS palisade_maps`)
				return err
			},
		},
	)
}
