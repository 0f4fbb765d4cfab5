package models

// DatabaseStructure is the schema tree of a project's database, fetched once per project
type DatabaseStructure struct {
	Schemas []Schema `json:"schemas"`
}

// Schema is a named group of tables
type Schema struct {
	Name   string  `json:"schemaName"`
	Tables []Table `json:"tables"`
}

// Table is a table and its ordered columns
type Table struct {
	Name    string   `json:"tableName"`
	Columns []Column `json:"columns"`
}

// Column is a single table column
type Column struct {
	Name     string `json:"columnName"`
	DataType string `json:"dataType"`
}

// TableRef identifies a table by schema and table name
type TableRef struct {
	Schema string `yaml:"schema" json:"schema"`
	Table  string `yaml:"table" json:"table"`
}

// String returns the schema-qualified name
func (r TableRef) String() string {
	return r.Schema + "." + r.Table
}

// FindSchema returns the schema with the given name
func (s *DatabaseStructure) FindSchema(name string) *Schema {
	if s == nil {
		return nil
	}
	for i := range s.Schemas {
		if s.Schemas[i].Name == name {
			return &s.Schemas[i]
		}
	}
	return nil
}

// FindTable returns the table referenced by ref
func (s *DatabaseStructure) FindTable(ref TableRef) *Table {
	schema := s.FindSchema(ref.Schema)
	if schema == nil {
		return nil
	}
	for i := range schema.Tables {
		if schema.Tables[i].Name == ref.Table {
			return &schema.Tables[i]
		}
	}
	return nil
}

// TableCount returns the number of tables across all schemas
func (s *DatabaseStructure) TableCount() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, schema := range s.Schemas {
		n += len(schema.Tables)
	}
	return n
}
