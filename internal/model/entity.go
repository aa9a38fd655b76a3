package model

// Well-known table and property names. The auth table holds one credential
// row per user under the fixed Userid partition; the data table holds one
// entity per user keyed by (country, name).
const (
	AuthTableName       = "AuthTable"
	DataTableName       = "DataTable"
	AuthUseridPartition = "Userid"

	PropPassword      = "Password"
	PropDataPartition = "DataPartition"
	PropDataRow       = "DataRow"

	PropFriends = "Friends"
	PropStatus  = "Status"
	PropUpdates = "Updates"
)

// Properties is a flat map of named string-valued entity properties.
// Non-string JSON values arriving over the wire are stored in their
// serialized form.
type Properties map[string]string

// Entity is one record of a table, addressed by (partition, row).
type Entity struct {
	Partition  string
	Row        string
	Properties Properties
}

// HasProperties reports whether the entity carries every named property,
// irrespective of values.
func (e *Entity) HasProperties(names []string) bool {
	for _, n := range names {
		if _, ok := e.Properties[n]; !ok {
			return false
		}
	}
	return true
}
