package store

const installScript = `
BEGIN;

CREATE TABLE IF NOT EXISTS videos (
	id BIGSERIAL PRIMARY KEY,
	video_id TEXT NOT NULL UNIQUE CHECK (video_id <> ''),
	title TEXT NOT NULL,
	description TEXT NULL,
	thumbnail_url TEXT NOT NULL,
	category TEXT NOT NULL,
	duration TEXT NOT NULL,
	duration_seconds INT NOT NULL DEFAULT 0,
	view_count INT NOT NULL DEFAULT 0,
	featured BOOLEAN NOT NULL DEFAULT FALSE,
	showreel BOOLEAN NOT NULL DEFAULT FALSE,
	published_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS videos_published_at_idx ON videos (published_at DESC);

CREATE TABLE IF NOT EXISTS subscribers (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL CHECK (name <> ''),
	email TEXT NOT NULL UNIQUE CHECK (email <> ''),
	consent_given BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

COMMIT;
`
