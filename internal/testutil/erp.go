// Package testutil provides an ERP database fixture and connection fakes for
// tests.
package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/erpsync/ebsconn/internal/store"
)

// Dates used by the fixture. Past and future are relative to any realistic
// test run.
const (
	PastDate   = "2001-01-01"
	EndedDate  = "2010-06-30"
	FutureDate = "2999-12-31"
	// FutureStartDate opens a validity window that has not begun yet.
	FutureStartDate = "2999-01-01"
)

const erpSchema = `
CREATE TABLE fnd_user (
	user_id INTEGER PRIMARY KEY,
	user_name TEXT NOT NULL,
	description TEXT,
	email_address TEXT,
	fax TEXT,
	start_date TEXT NOT NULL,
	end_date TEXT,
	last_logon_date TEXT,
	password_date TEXT,
	employee_id INTEGER
);

CREATE TABLE per_all_people_f (
	person_id INTEGER PRIMARY KEY,
	full_name TEXT,
	employee_number TEXT,
	npw_number TEXT
);

CREATE TABLE fnd_application_vl (
	application_id INTEGER PRIMARY KEY,
	application_short_name TEXT NOT NULL,
	application_name TEXT NOT NULL
);

CREATE TABLE fnd_security_groups_vl (
	security_group_id INTEGER PRIMARY KEY,
	security_group_key TEXT NOT NULL,
	security_group_name TEXT NOT NULL
);

CREATE TABLE fnd_responsibility_vl (
	responsibility_id INTEGER NOT NULL,
	application_id INTEGER NOT NULL,
	responsibility_name TEXT NOT NULL,
	responsibility_key TEXT NOT NULL,
	description TEXT,
	menu_id INTEGER,
	start_date TEXT NOT NULL,
	end_date TEXT,
	PRIMARY KEY (responsibility_id, application_id)
);

CREATE TABLE fnd_user_resp_groups (
	user_id INTEGER NOT NULL,
	responsibility_id INTEGER NOT NULL,
	responsibility_application_id INTEGER NOT NULL,
	security_group_id INTEGER,
	start_date TEXT NOT NULL,
	end_date TEXT,
	description TEXT
);

CREATE TABLE fnd_user_resp_groups_direct (
	user_id INTEGER NOT NULL,
	responsibility_id INTEGER NOT NULL,
	responsibility_application_id INTEGER NOT NULL,
	security_group_id INTEGER,
	start_date TEXT NOT NULL,
	end_date TEXT,
	description TEXT
);

CREATE TABLE fnd_user_resp_groups_indirect (
	user_id INTEGER NOT NULL,
	responsibility_id INTEGER NOT NULL,
	responsibility_application_id INTEGER NOT NULL,
	security_group_id INTEGER,
	start_date TEXT NOT NULL,
	end_date TEXT,
	description TEXT
);

CREATE TABLE fnd_menus_vl (
	menu_id INTEGER PRIMARY KEY,
	menu_name TEXT NOT NULL,
	user_menu_name TEXT
);

CREATE TABLE fnd_menu_entries (
	menu_id INTEGER NOT NULL,
	entry_sequence INTEGER NOT NULL,
	sub_menu_id INTEGER,
	function_id INTEGER,
	grant_flag TEXT NOT NULL DEFAULT 'Y'
);

CREATE TABLE fnd_form_functions_vl (
	function_id INTEGER PRIMARY KEY,
	function_name TEXT NOT NULL,
	user_function_name TEXT,
	form_id INTEGER,
	parameters TEXT,
	type TEXT
);

CREATE TABLE fnd_form_vl (
	form_id INTEGER PRIMARY KEY,
	application_id INTEGER,
	form_name TEXT NOT NULL,
	user_form_name TEXT
);

CREATE TABLE fnd_resp_functions (
	application_id INTEGER NOT NULL,
	responsibility_id INTEGER NOT NULL,
	action_id INTEGER NOT NULL,
	rule_type TEXT NOT NULL
);
`

// Seed data:
//
//	users:  JDOE (person John Doe), ASMITH (person Alice Smith),
//	        OLDUSER (ended), FUTURE (end date in the future)
//	resps:  System Administrator (10, menu 100), GL Inquiry (20, menu 200),
//	        GL Superuser (30, ended)
//	menus:  100 -> {110 -> {130}, 120 (excluded for resp 10)}
//	        200 with function 2001 excluded for resp 20
const erpSeed = `
INSERT INTO per_all_people_f VALUES
	(100, 'Doe, John', 'E100', NULL),
	(101, 'Smith, Alice', 'E101', NULL);

INSERT INTO fnd_user VALUES
	(1, 'JDOE', 'John Doe', 'jdoe@example.com', NULL, '2001-01-01', NULL, '2024-05-01', '2024-01-01', 100),
	(2, 'ASMITH', 'Alice Smith', 'asmith@example.com', '555-0101', '2005-03-01', NULL, NULL, NULL, 101),
	(3, 'OLDUSER', 'Former employee', NULL, NULL, '2001-01-01', '2010-06-30', NULL, NULL, NULL),
	(4, 'FUTURE', 'Contractor', NULL, NULL, '2001-01-01', '2999-12-31', NULL, NULL, NULL);

INSERT INTO fnd_application_vl VALUES
	(1, 'SYSADMIN', 'System Administration'),
	(2, 'SQLGL', 'General Ledger');

INSERT INTO fnd_security_groups_vl VALUES
	(0, 'STANDARD', 'Standard');

INSERT INTO fnd_responsibility_vl VALUES
	(10, 1, 'System Administrator', 'SYSTEM_ADMINISTRATOR', 'Full administration', 100, '2001-01-01', NULL),
	(20, 2, 'GL Inquiry', 'GL_INQUIRY', 'Read-only ledger access', 200, '2001-01-01', NULL),
	(30, 2, 'GL Superuser', 'GL_SUPERUSER', NULL, 300, '2001-01-01', '2010-12-31');

INSERT INTO fnd_user_resp_groups VALUES
	(1, 10, 1, 0, '2001-01-01', NULL, NULL),
	(1, 20, 2, 0, '2001-01-01', NULL, NULL),
	(2, 20, 2, 0, '2005-03-01', NULL, NULL),
	(3, 30, 2, 0, '2001-01-01', '2010-06-30', NULL),
	(4, 10, 1, 0, '2001-01-01', '2999-12-31', NULL);

INSERT INTO fnd_user_resp_groups_direct VALUES
	(1, 10, 1, 0, '2001-01-01', NULL, 'granted by admin'),
	(2, 20, 2, 0, '2005-03-01', '2009-01-01', NULL),
	(4, 10, 1, 0, '2001-01-01', '2999-12-31', NULL);

INSERT INTO fnd_user_resp_groups_indirect VALUES
	(1, 10, 1, 0, '2001-01-01', NULL, 'role inheritance'),
	(1, 20, 2, 0, '2001-01-01', NULL, 'role inheritance');

INSERT INTO fnd_menus_vl VALUES
	(100, 'FND_NAVIGATE4', 'Navigator Menu - System Administrator GUI'),
	(110, 'FND_SECURITY4', 'Security Menu'),
	(120, 'FND_EXCLUDED', 'Excluded Menu'),
	(130, 'FND_USERS', 'Users Menu'),
	(200, 'GL_INQUIRY_MENU', 'GL Inquiry Menu'),
	(300, 'GL_SUPERUSER_MENU', 'GL Superuser Menu');

INSERT INTO fnd_menu_entries VALUES
	(100, 10, 110, NULL, 'Y'),
	(100, 20, 120, NULL, 'Y'),
	(100, 30, NULL, 1000, 'Y'),
	(100, 40, NULL, 1001, 'N'),
	(110, 10, NULL, 1002, 'Y'),
	(110, 20, 130, NULL, 'Y'),
	(120, 10, NULL, 1003, 'Y'),
	(130, 10, NULL, 1004, 'Y'),
	(200, 10, NULL, 2000, 'Y'),
	(200, 20, NULL, 2001, 'Y'),
	(300, 10, NULL, 2002, 'Y');

INSERT INTO fnd_form_vl VALUES
	(500, 1, 'FNDSCAUS', 'Define Users'),
	(501, 1, 'FNDSCRSP', 'Define Responsibility'),
	(502, 1, 'FNDHIDE', 'Hidden Form'),
	(600, 2, 'GLXJEENT', 'Enter Journals');

INSERT INTO fnd_form_functions_vl VALUES
	(1000, 'FND_FNDSCAUS', 'Users', 500, '', 'FORM'),
	(1001, 'FND_NOT_GRANTED', 'Not Granted', NULL, NULL, 'FUNCTION'),
	(1002, 'FND_FNDSCRSP', 'Responsibilities', 501, NULL, 'FORM'),
	(1003, 'FND_HIDDEN', 'Hidden', 502, NULL, 'FORM'),
	(1004, 'FND_FNDSCAUS_VIEW', 'Users (View)', 500, 'QUERY_ONLY="YES"', 'FORM'),
	(2000, 'GL_JE_INQUIRY', 'Journal Inquiry', 600, 'QUERY_ONLY=YES', 'FORM'),
	(2001, 'GL_JE_ENTER', 'Enter Journals', 600, '', 'FORM'),
	(2002, 'GL_SUPERUSER_FN', 'Superuser', NULL, NULL, 'FUNCTION');

INSERT INTO fnd_resp_functions VALUES
	(1, 10, 120, 'M'),
	(2, 20, 2001, 'F');
`

// ERP is a seeded ERP database for tests.
type ERP struct {
	DB *sql.DB
	// Path is the SQLite file backing DB.
	Path string
	t    *testing.T
}

// NewERP creates a seeded SQLite database in a temporary directory. The
// database is closed when the test ends.
func NewERP(t *testing.T) *ERP {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "erp.db")
	db, err := store.Open(context.Background(), "sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(erpSchema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	if _, err := db.Exec(erpSeed); err != nil {
		t.Fatalf("failed to seed data: %v", err)
	}
	return &ERP{DB: db, Path: dsn, t: t}
}

// Exec runs a statement against the fixture, failing the test on error.
func (e *ERP) Exec(query string, args ...any) {
	e.t.Helper()
	if _, err := e.DB.Exec(query, args...); err != nil {
		e.t.Fatalf("exec %q: %v", query, err)
	}
}

// Begin starts a SQLite transaction on the fixture.
func (e *ERP) Begin() *store.Tx {
	e.t.Helper()
	tx, err := store.Begin(context.Background(), e.DB, store.SQLite)
	if err != nil {
		e.t.Fatalf("failed to begin transaction: %v", err)
	}
	return tx
}
