package types

// Standard table names for Cupboard.GetTable.
const (
	TableContents = "contents"
	TableNodes    = "nodes"
	TableLinks    = "links"
)

// StandardTableNames lists all standard table names for enumeration.
var StandardTableNames = []string{
	TableContents,
	TableNodes,
	TableLinks,
}
