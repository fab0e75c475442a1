package sqlite

// Schema DDL. Creation is idempotent so EnsureSchema may run on every start.
const (
	createContacts = `CREATE TABLE IF NOT EXISTS contacts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    number TEXT NOT NULL
);`
)

// Contact statements.
const (
	insertContact       = `INSERT INTO contacts (name, number) VALUES (?, ?)`
	deleteContactByName = `DELETE FROM contacts WHERE name = ? RETURNING id, name, number`
	selectContacts      = `SELECT id, name, number FROM contacts ORDER BY id`
)

// schemaDDL lists all CREATE statements in dependency order.
var schemaDDL = []string{
	createContacts,
}
