// Package testdb provides database fixtures for tests.
//
// NewSQLiteDB returns a migrated SQLite database in a temporary directory and
// is available to every test. The PostgreSQL helpers are compiled only with
// the integration build tag:
//
//	func TestMyFeature(t *testing.T) {
//	    t.Parallel()
//	    db := testdb.GetTestDBWithT(t)
//
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        items := postgres.NewPostgresVocabularyItemStore(tx, nil)
//	        // ...
//	    })
//	}
//
// Each PostgreSQL test runs in its own transaction, which is rolled back when
// the test completes. Those tests are skipped unless DATABASE_URL or
// SNAPVOCAB_TEST_DB_URL is set.
package testdb
