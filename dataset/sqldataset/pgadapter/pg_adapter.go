/*
Package pgadapter provides an implementation of the
Adapter interface in the sqldataset package that works
over a PostgreSQL database.
*/
package pgadapter

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jay-ng-mc/river/dataset/sqldataset"

	// Import of PostgreSQL driver
	_ "github.com/lib/pq"
)

const (
	discreteValueTableCreateStmt = `CREATE TABLE IF NOT EXISTS discreteValues (
		id SERIAL PRIMARY KEY,
		value TEXT UNIQUE NOT NULL)`

	// MaxDiscreteValueInsertionsPerStatement is the maximum number
	// of discrete values that are allowed to be added with a single
	// insert command with the AddDiscreteValues method of the adapter.
	// Trying to add more will result in making more insertion commands
	MaxDiscreteValueInsertionsPerStatement = 10

	// MaxSampleInsertionsPerStatement is the maximum number
	// of samples that are allowed to be added with a single
	// insert command with the AddSamples method of the adapter.
	// Trying to add more will result in making more insertion commands
	MaxSampleInsertionsPerStatement = 10
)

type adapter struct {
	db *sql.DB
}

/*
New takes a PostgreSQL database connection URL and returns
an Adapter that works on the database or an error if it fails to connect to it.
*/
func New(url string) (sqldataset.Adapter, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, err
	}
	return &adapter{db}, nil
}

func (a *adapter) ColumnName(featureName string) (string, error) {
	if featureName == "id" {
		return "", fmt.Errorf(`'%s' is reserved and cannot be used as feature name`, featureName)
	}
	if strings.ContainsAny(featureName, `"`) {
		return "", fmt.Errorf(`feature name '%s' contains invalid character '"'`, featureName)
	}
	return featureName, nil
}

func (a *adapter) CreateDiscreteValuesTable(ctx context.Context) error {
	_, err := a.db.ExecContext(ctx, discreteValueTableCreateStmt)
	if err != nil {
		return fmt.Errorf("running discreteValues creation statement: %v", err)
	}
	return nil
}

func (a *adapter) CreateSampleTable(ctx context.Context, discreteFeatureColumns, continuousFeatureColumns []string) error {
	var createStmtBuf bytes.Buffer
	createStmtBuf.WriteString("CREATE TABLE IF NOT EXISTS samples(")
	for _, c := range discreteFeatureColumns {
		createStmtBuf.WriteString(fmt.Sprintf(`"%s" INTEGER NULL REFERENCES discreteValues(id), `, c))
	}
	for _, c := range continuousFeatureColumns {
		createStmtBuf.WriteString(fmt.Sprintf(`"%s" REAL NULL, `, c))
	}
	createStmtBuf.WriteString(`"id" SERIAL PRIMARY KEY)`)
	_, err := a.db.ExecContext(ctx, createStmtBuf.String())
	if err != nil {
		return fmt.Errorf("ensuring samples table exists: %v", err)
	}
	return nil
}

func (a *adapter) AddDiscreteValues(ctx context.Context, values []string) (int, error) {
	if len(values) == 0 {
		return 0, nil
	}
	added := 0
	for added < len(values) {
		chunk := values[added:]
		if len(chunk) > MaxDiscreteValueInsertionsPerStatement {
			chunk = chunk[:MaxDiscreteValueInsertionsPerStatement]
		}
		var insertStmtBuf bytes.Buffer
		insertStmtBuf.WriteString("INSERT INTO discreteValues (value) VALUES ($1)")
		for i := 1; i < len(chunk); i++ {
			insertStmtBuf.WriteString(fmt.Sprintf(", ($%d)", i+1))
		}
		iv := make([]interface{}, 0, len(chunk))
		for _, v := range chunk {
			iv = append(iv, v)
		}
		_, err := a.db.ExecContext(ctx, insertStmtBuf.String(), iv...)
		if err != nil {
			return added, fmt.Errorf("inserting discrete values %d to %d: %v", added+1, added+len(chunk), err)
		}
		added += len(chunk)
	}
	return added, nil
}

func (a *adapter) ListDiscreteValues(ctx context.Context) (map[int]string, error) {
	rows, err := a.db.QueryContext(ctx, `SELECT id, value FROM discreteValues`)
	if err != nil {
		return nil, err
	}
	result := make(map[int]string)
	for rows.Next() {
		var id int
		var value string
		err = rows.Scan(&id, &value)
		if err != nil {
			return nil, err
		}
		result[id] = value
	}
	err = rows.Err()
	if err != nil {
		return nil, err
	}
	err = rows.Close()
	return result, err
}

func (a *adapter) AddSamples(ctx context.Context, rawSamples []map[string]interface{}, discreteFeatureColumns, continuousFeatureColumns []string) (int, error) {
	if len(rawSamples) == 0 {
		return 0, nil
	}
	columns := len(discreteFeatureColumns) + len(continuousFeatureColumns)
	if columns == 0 {
		return 0, fmt.Errorf("no features to store")
	}
	added := 0
	for added < len(rawSamples) {
		chunk := rawSamples[added:]
		if len(chunk) > MaxSampleInsertionsPerStatement {
			chunk = chunk[:MaxSampleInsertionsPerStatement]
		}
		stmt := buildSampleInsertStmt(discreteFeatureColumns, continuousFeatureColumns, len(chunk))
		values := make([]interface{}, 0, len(chunk)*columns)
		for _, rs := range chunk {
			for _, c := range discreteFeatureColumns {
				values = append(values, rs[c])
			}
			for _, c := range continuousFeatureColumns {
				values = append(values, rs[c])
			}
		}
		_, err := a.db.ExecContext(ctx, stmt, values...)
		if err != nil {
			return added, fmt.Errorf("inserting samples %d to %d: %v", added+1, added+len(chunk), err)
		}
		added += len(chunk)
	}
	return added, nil
}

func (a *adapter) IterateOnSamples(ctx context.Context, discreteFeatureColumns, continuousFeatureColumns []string, lambda func(int, map[string]interface{}) (bool, error)) error {
	var queryBuffer bytes.Buffer
	queryBuffer.WriteString(`SELECT "`)
	queryBuffer.WriteString(strings.Join(discreteFeatureColumns, `", "`))
	if len(discreteFeatureColumns) > 0 && len(continuousFeatureColumns) > 0 {
		queryBuffer.WriteString(`", "`)
	}
	queryBuffer.WriteString(strings.Join(continuousFeatureColumns, `", "`))
	queryBuffer.WriteString(`" FROM samples ORDER BY "id"`)
	rows, err := a.db.QueryContext(ctx, queryBuffer.String())
	if err != nil {
		return err
	}
	for j := 0; rows.Next(); j++ {
		rawSample := make(map[string]interface{})
		discreteValues := make([]sql.NullInt64, len(discreteFeatureColumns))
		continuousValues := make([]sql.NullFloat64, len(continuousFeatureColumns))
		values := make([]interface{}, 0, len(discreteFeatureColumns)+len(continuousFeatureColumns))
		for i := range discreteValues {
			values = append(values, &discreteValues[i])
		}
		for i := range continuousValues {
			values = append(values, &continuousValues[i])
		}
		err = rows.Scan(values...)
		if err != nil {
			return err
		}
		for i, c := range discreteFeatureColumns {
			if discreteValues[i].Valid {
				rawSample[c] = int(discreteValues[i].Int64)
			}
		}
		for i, c := range continuousFeatureColumns {
			if continuousValues[i].Valid {
				rawSample[c] = continuousValues[i].Float64
			}
		}
		ok, err := lambda(j, rawSample)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	err = rows.Err()
	if err != nil {
		return err
	}
	return rows.Close()
}

func (a *adapter) CountSamples(ctx context.Context) (int, error) {
	var count int
	err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM samples`).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func buildSampleInsertStmt(discreteFeatureColumns, continuousFeatureColumns []string, samples int) string {
	columns := len(discreteFeatureColumns) + len(continuousFeatureColumns)
	var buf bytes.Buffer
	buf.WriteString(`INSERT INTO samples ("`)
	buf.WriteString(strings.Join(discreteFeatureColumns, `", "`))
	if len(discreteFeatureColumns) > 0 && len(continuousFeatureColumns) > 0 {
		buf.WriteString(`", "`)
	}
	buf.WriteString(strings.Join(continuousFeatureColumns, `", "`))
	buf.WriteString(`") VALUES `)
	for i := 0; i < samples; i++ {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString("(")
		for j := 0; j < columns; j++ {
			if j > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(fmt.Sprintf("$%d", i*columns+j+1))
		}
		buf.WriteString(")")
	}
	return buf.String()
}
