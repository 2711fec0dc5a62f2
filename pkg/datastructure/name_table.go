package datastructure

// NameTable is a flat byte buffer partitioned into strings by Offsets.
// Name i occupies CharData[Offsets[i]:Offsets[i+1]].
type NameTable struct {
	CharData []byte
	Offsets  []uint32
	ids      map[string]NameID
}

func NewNameTable() *NameTable {
	nt := &NameTable{
		CharData: make([]byte, 0),
		Offsets:  []uint32{0},
		ids:      make(map[string]NameID),
	}
	// name id 0 is the empty name
	nt.GetID("")
	return nt
}

// GetID returns the id of name, adding it if it is not in the table yet.
func (nt *NameTable) GetID(name string) NameID {
	if id, ok := nt.ids[name]; ok {
		return id
	}
	id := NameID(len(nt.Offsets) - 1)
	nt.CharData = append(nt.CharData, name...)
	nt.Offsets = append(nt.Offsets, uint32(len(nt.CharData)))
	nt.ids[name] = id
	return id
}

func (nt *NameTable) GetName(id NameID) string {
	if int(id)+1 >= len(nt.Offsets) {
		return ""
	}
	return string(nt.CharData[nt.Offsets[id]:nt.Offsets[id+1]])
}

func (nt *NameTable) Size() int {
	return len(nt.Offsets) - 1
}

// NewNameTableFromData rebuilds a table read back from disk.
func NewNameTableFromData(charData []byte, offsets []uint32) *NameTable {
	nt := &NameTable{CharData: charData, Offsets: offsets, ids: make(map[string]NameID, len(offsets))}
	for i := 0; i+1 < len(offsets); i++ {
		nt.ids[nt.GetName(NameID(i))] = NameID(i)
	}
	return nt
}
