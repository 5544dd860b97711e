// ABOUTME: Database schema definition for all recall tables
// ABOUTME: Applied idempotently on every open via CREATE IF NOT EXISTS
package sqlite

// Schema defines all tables and indexes
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	messenger_id TEXT NOT NULL UNIQUE,
	display_name TEXT NOT NULL DEFAULT '',
	program_experience TEXT NOT NULL DEFAULT '',
	sobriety_date TEXT NOT NULL DEFAULT '',
	personal_prompt TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS blocks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL UNIQUE,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS frames (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	content TEXT NOT NULL,
	emotion TEXT NOT NULL DEFAULT '',
	weight REAL NOT NULL DEFAULT 0,
	thinking_frame TEXT NOT NULL DEFAULT '',
	level_of_mind INTEGER NOT NULL DEFAULT 0,
	memory_type TEXT NOT NULL DEFAULT '',
	target_block TEXT,
	action TEXT NOT NULL DEFAULT '',
	strategy_hint TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_frames_user ON frames(user_id);

CREATE TABLE IF NOT EXISTS frame_blocks (
	frame_id INTEGER NOT NULL REFERENCES frames(id) ON DELETE CASCADE,
	block_id INTEGER NOT NULL REFERENCES blocks(id) ON DELETE CASCADE,
	PRIMARY KEY (frame_id, block_id)
);

CREATE INDEX IF NOT EXISTS idx_frame_blocks_block ON frame_blocks(block_id);

CREATE TABLE IF NOT EXISTS messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_messages_user ON messages(user_id, created_at);

CREATE TABLE IF NOT EXISTS frame_tracking (
	user_id INTEGER PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
	candidates TEXT NOT NULL DEFAULT '[]',
	confirmed TEXT NOT NULL DEFAULT '[]',
	counts TEXT NOT NULL DEFAULT '{}',
	history TEXT NOT NULL DEFAULT '[]',
	min_to_confirm INTEGER NOT NULL DEFAULT 3,
	archetypes TEXT NOT NULL DEFAULT '[]',
	meta_flags TEXT NOT NULL DEFAULT '[]',
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS profile_answers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	section_name TEXT NOT NULL,
	order_index INTEGER NOT NULL DEFAULT 0,
	question_text TEXT NOT NULL,
	answer_text TEXT NOT NULL,
	version INTEGER NOT NULL DEFAULT 1,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_profile_answers_user ON profile_answers(user_id, section_name, order_index);

CREATE TABLE IF NOT EXISTS profile_entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	section_name TEXT NOT NULL,
	subblock TEXT NOT NULL DEFAULT '',
	entity_type TEXT NOT NULL DEFAULT '',
	content TEXT NOT NULL,
	importance REAL NOT NULL DEFAULT 0.5,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_profile_entries_user ON profile_entries(user_id, section_name);

CREATE TABLE IF NOT EXISTS step_answers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	step_number INTEGER NOT NULL,
	step_title TEXT NOT NULL DEFAULT '',
	question_text TEXT NOT NULL,
	answer_text TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_step_answers_user ON step_answers(user_id, step_number);

CREATE TABLE IF NOT EXISTS gratitudes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	text TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_gratitudes_user ON gratitudes(user_id, created_at);

CREATE TABLE IF NOT EXISTS daily_analyses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	date TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'in_progress',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_daily_analyses_user ON daily_analyses(user_id, date);

CREATE TABLE IF NOT EXISTS daily_answers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	analysis_id INTEGER NOT NULL REFERENCES daily_analyses(id) ON DELETE CASCADE,
	question_number INTEGER NOT NULL,
	answer_text TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS frame_embeddings (
	frame_id INTEGER PRIMARY KEY REFERENCES frames(id) ON DELETE CASCADE,
	user_id INTEGER NOT NULL,
	document TEXT NOT NULL,
	vector BLOB NOT NULL,
	emotion TEXT NOT NULL DEFAULT '',
	blocks TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_frame_embeddings_user ON frame_embeddings(user_id);

CREATE TABLE IF NOT EXISTS core_embeddings (
	chunk_id TEXT PRIMARY KEY,
	document TEXT NOT NULL,
	vector BLOB NOT NULL,
	tags TEXT NOT NULL DEFAULT '',
	block TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
