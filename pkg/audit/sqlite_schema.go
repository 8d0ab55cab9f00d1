package audit

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// schema contains the SQL statements to create the audit database schema.
const schema = `
-- Scan audit records
CREATE TABLE IF NOT EXISTS audit (
    id TEXT PRIMARY KEY,
    request_id TEXT,
    time TIMESTAMP NOT NULL,

    mode TEXT NOT NULL,
    sensitivity TEXT NOT NULL,
    outcome TEXT NOT NULL,
    safe BOOLEAN NOT NULL,

    input_chars INTEGER,
    duration_ms INTEGER
);

-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);

CREATE INDEX IF NOT EXISTS idx_audit_time ON audit(time);
CREATE INDEX IF NOT EXISTS idx_audit_outcome ON audit(outcome);
CREATE INDEX IF NOT EXISTS idx_audit_request_id ON audit(request_id);
`

const insertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version) VALUES (?);`

const getSchemaVersion = `SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;`
