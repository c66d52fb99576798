package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS questions (
    id          TEXT PRIMARY KEY,
    code        TEXT NOT NULL,
    question    TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    images      JSONB NOT NULL DEFAULT '[]',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS problems (
    id          TEXT PRIMARY KEY,
    code        TEXT NOT NULL,
    name        TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    images      JSONB NOT NULL DEFAULT '[]',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS treatments (
    id          TEXT PRIMARY KEY,
    code        TEXT NOT NULL,
    name        TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    images      JSONB NOT NULL DEFAULT '[]',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS quizzes (
    id           TEXT PRIMARY KEY,
    code         TEXT NOT NULL UNIQUE,
    name         TEXT NOT NULL,
    status       TEXT NOT NULL DEFAULT 'active',
    root_node_id TEXT NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS quiz_nodes (
    id                TEXT PRIMARY KEY,
    quiz_id           TEXT NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
    question_id       TEXT REFERENCES questions(id) ON DELETE SET NULL,
    is_inline_answers BOOLEAN NOT NULL DEFAULT FALSE,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS answers (
    id             TEXT PRIMARY KEY,
    quiz_id        TEXT NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
    parent_node_id TEXT NOT NULL REFERENCES quiz_nodes(id) ON DELETE CASCADE,
    next_node_id   TEXT REFERENCES quiz_nodes(id) ON DELETE SET NULL,
    label          TEXT NOT NULL DEFAULT '',
    icon           JSONB,
    position       INTEGER NOT NULL DEFAULT 0,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS results (
    id               TEXT PRIMARY KEY,
    answer_id        TEXT NOT NULL UNIQUE REFERENCES answers(id) ON DELETE CASCADE,
    problem_ids      JSONB NOT NULL DEFAULT '[]',
    treatment_groups JSONB NOT NULL DEFAULT '[]',
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_quiz_nodes_quiz_id  ON quiz_nodes(quiz_id);
CREATE INDEX IF NOT EXISTS idx_answers_quiz_id     ON answers(quiz_id);
CREATE INDEX IF NOT EXISTS idx_answers_parent      ON answers(parent_node_id);
CREATE INDEX IF NOT EXISTS idx_answers_next        ON answers(next_node_id);
`

// CreateSchema creates the quiz tables if they don't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops every quiz table.
func (s *PGStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx,
		`DROP TABLE IF EXISTS results, answers, quiz_nodes, quizzes, treatments, problems, questions CASCADE;`)
	return err
}
