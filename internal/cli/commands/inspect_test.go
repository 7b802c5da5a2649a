package commands

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmacia/subclass-ide-helper/internal/registry"
)

// seedSnapshot creates a SQLite snapshot equivalent to the node part of the
// test manifest.
func seedSnapshot(t *testing.T, path string) {
	t.Helper()

	db, err := sql.Open(registry.DriverSQLite, path)
	require.NoError(t, err)
	defer db.Close()

	statements := []string{
		registry.Schema,
		`INSERT INTO sih_bundle (entity_type, bundle, class, weight) VALUES
			('node', 'article', 'App\Entity\Article', 0),
			('node', 'page', NULL, 1)`,
		`INSERT INTO sih_field
			(entity_type, bundle, field_name, field_type, list_class, label, required, configurable, weight) VALUES
			('node', 'article', 'nid', 'integer', NULL, NULL, 0, 0, 0),
			('node', 'article', 'title', 'string', NULL, 'Title', 1, 1, 1),
			('node', 'article', 'summary', 'text_long', NULL, 'Summary', 0, 1, 2),
			('node', 'page', 'body', 'text_with_summary', NULL, 'Body', 0, 1, 0)`,
	}
	for _, stmt := range statements {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
}

func TestInspectTable(t *testing.T) {
	stdout, _, err := executeCommand(t, nil,
		"inspect", "node,taxonomy_term", "--manifest", testManifest, "--excluded-classes", "Page , Tag ")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(stdout, "\n"), "\n")
	require.Len(t, lines, 8, stdout)

	assert.Equal(t, "Subclassed bundles", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "ENTITY TYPE"))
	assert.Regexp(t, `^node\s+article\s+App\\Entity\\Article\s+2\s+generated$`, lines[3])
	assert.Regexp(t, `^node\s+page\s+-\s+0\s+no class$`, lines[4])
	assert.Regexp(t, `^taxonomy_term\s+tags\s+App\\Entity\\Tag\s+0\s+excluded$`, lines[5])
	assert.Equal(t, "", lines[6])
	assert.Equal(t, "3 bundle(s), 1 with a stub class", lines[7])
}

func TestInspectJSON(t *testing.T) {
	stdout, _, err := executeCommand(t, nil,
		"inspect", "--manifest", testManifest, "--format", "json")
	require.NoError(t, err)

	var reports []BundleReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &reports))

	assert.Equal(t, []BundleReport{
		{EntityType: "node", Bundle: "article", Class: `App\Entity\Article`, Fields: 2, Status: StatusGenerated},
		{EntityType: "node", Bundle: "page", Status: StatusNoClass},
	}, reports)
}

func TestInspectRejectsUnknownFormat(t *testing.T) {
	_, _, err := executeCommand(t, nil, "inspect", "--manifest", testManifest, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

// countingSource records field lookups so tests can assert which bundles
// were inspected.
type countingSource struct {
	registry.Source
	fieldLookups []string
}

func (s *countingSource) FieldDefinitions(ctx context.Context, entityType, bundle string) ([]registry.FieldDefinition, error) {
	s.fieldLookups = append(s.fieldLookups, entityType+"."+bundle)
	return s.Source.FieldDefinitions(ctx, entityType, bundle)
}

func TestInspectBundlesSkipsLookups(t *testing.T) {
	mem := registry.NewMemory()
	mem.AddBundle("node", registry.Bundle{Name: "article", Class: `App\Entity\Article`})
	mem.AddBundle("node", registry.Bundle{Name: "page", Class: `App\Entity\Page`})
	mem.AddBundle("node", registry.Bundle{Name: "landing"})
	mem.AddField("node", "article", &registry.BaseField{FieldName: "nid", FieldType: "integer"})

	src := &countingSource{Source: mem}
	reports, err := inspectBundles(context.Background(), src, []string{"node"}, []string{"Page"})
	require.NoError(t, err)

	assert.Equal(t, []string{"node.article"}, src.fieldLookups)
	require.Len(t, reports, 3)
	assert.Equal(t, StatusNoFields, reports[0].Status)
	assert.Equal(t, StatusExcluded, reports[1].Status)
	assert.Equal(t, StatusNoClass, reports[2].Status)
}

func TestInspectFromSQLiteSnapshot(t *testing.T) {
	dsn := t.TempDir() + "/snapshot.db"
	seedSnapshot(t, dsn)

	stdout, _, err := executeCommand(t, nil,
		"inspect", "--source", "database", "--dsn", "sqlite://"+dsn, "--format", "json")
	require.NoError(t, err)

	var reports []BundleReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &reports))
	require.Len(t, reports, 2)
	assert.Equal(t, 2, reports[0].Fields)
	assert.Equal(t, StatusNoClass, reports[1].Status)
}
