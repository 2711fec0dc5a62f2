package storage

const (
	NODES_FILE_SUFFIX                    = ".nodes"
	EDGES_FILE_SUFFIX                    = ".edges"
	RESTRICTIONS_FILE_SUFFIX             = ".restrictions"
	CONDITIONAL_RESTRICTIONS_FILE_SUFFIX = ".conditional_restrictions"
	NAMES_FILE_SUFFIX                    = ".names"
	DUPLICATED_NODES_FILE_SUFFIX         = ".duplicated_nodes"
	SPATIAL_INDEX_DIR_SUFFIX             = ".edge_index"

	// cap on the capacity reserved up front when the stream length is unknown
	MAX_RESERVE_ELEMENTS = 1 << 20
)

// OutputFiles are the paths of every file one preprocessing run writes.
type OutputFiles struct {
	Nodes                   string
	Edges                   string
	Restrictions            string
	ConditionalRestrictions string
	Names                   string
	DuplicatedNodes         string
}

func NewOutputFiles(basePath string) OutputFiles {
	return OutputFiles{
		Nodes:                   basePath + NODES_FILE_SUFFIX,
		Edges:                   basePath + EDGES_FILE_SUFFIX,
		Restrictions:            basePath + RESTRICTIONS_FILE_SUFFIX,
		ConditionalRestrictions: basePath + CONDITIONAL_RESTRICTIONS_FILE_SUFFIX,
		Names:                   basePath + NAMES_FILE_SUFFIX,
		DuplicatedNodes:         basePath + DUPLICATED_NODES_FILE_SUFFIX,
	}
}
