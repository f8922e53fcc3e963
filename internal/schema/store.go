package schema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
)

// Store is the immutable, in-memory representation of the schema bundle.
// It is built once at startup via Load and never mutated afterward, so all
// of its methods are safe for concurrent use without locking.
type Store struct {
	baseAddresses map[string]SectionPointer
	tables        map[string]Table
}

// rawTable is the wire shape of one JSON document in the bundle: a flat
// map from entry name to a raw value that is either a field definition or
// a group/section pointer, distinguished by which keys are present.
type rawTable map[string]json.RawMessage

// Load builds a Store from every *.json document in bundleFS. The file
// named "base-addresses.json" is treated specially: it maps section names
// to SectionPointer entries. Every other file is named after a table and
// holds either field definitions (leaf tables) or group pointers
// (container tables).
func Load(bundleFS fs.FS) (*Store, error) {
	entries, err := fs.ReadDir(bundleFS, ".")
	if err != nil {
		return nil, fmt.Errorf("schema: read bundle dir: %w", err)
	}

	s := &Store{
		baseAddresses: make(map[string]SectionPointer),
		tables:        make(map[string]Table),
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := fs.ReadFile(bundleFS, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("schema: read %s: %w", entry.Name(), err)
		}

		var raw rawTable
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("schema: parse %s: %w", entry.Name(), err)
		}

		tableName := strings.TrimSuffix(entry.Name(), ".json")

		if tableName == "base-addresses" {
			for name, msg := range raw {
				var ptr SectionPointer
				if err := json.Unmarshal(msg, &ptr); err != nil {
					return nil, fmt.Errorf("schema: parse base address %s: %w", name, err)
				}
				s.baseAddresses[name] = ptr
			}
			continue
		}

		table := Table{}
		for name, msg := range raw {
			var probe map[string]json.RawMessage
			if err := json.Unmarshal(msg, &probe); err != nil {
				return nil, fmt.Errorf("schema: parse %s.%s: %w", tableName, name, err)
			}

			if _, isField := probe["offset"]; isField {
				if table.Fields == nil {
					table.Fields = make(map[string]FieldTable)
				}
				var ft FieldTable
				if err := json.Unmarshal(msg, &ft); err != nil {
					return nil, fmt.Errorf("schema: parse field %s.%s: %w", tableName, name, err)
				}
				table.Fields[name] = ft
				continue
			}

			if table.Groups == nil {
				table.Groups = make(map[string]GroupPointer)
			}
			var gp GroupPointer
			if err := json.Unmarshal(msg, &gp); err != nil {
				return nil, fmt.Errorf("schema: parse group %s.%s: %w", tableName, name, err)
			}
			table.Groups[name] = gp
		}

		s.tables[tableName] = table
	}

	return s, nil
}

// resolved captures the intermediate state of an address resolution so
// both ResolveAddress and ValueRange/Decode can share the lookup chain.
type resolved struct {
	addr  uint32
	field FieldTable
}

func (s *Store) resolve(section, group, field string) (resolved, error) {
	sectionPtr, ok := s.baseAddresses[section]
	if !ok {
		return resolved{}, &ErrUnknownName{Kind: "section", Name: section}
	}

	containerTable, ok := s.tables[sectionPtr.Table]
	if !ok {
		return resolved{}, &ErrUnknownName{Kind: "table", Name: sectionPtr.Table}
	}

	groupPtr, ok := containerTable.Groups[group]
	if !ok {
		return resolved{}, &ErrUnknownName{Kind: "group", Name: group}
	}

	fieldTable, ok := s.tables[groupPtr.Table]
	if !ok {
		return resolved{}, &ErrUnknownName{Kind: "table", Name: groupPtr.Table}
	}

	fieldDef, ok := fieldTable.Fields[field]
	if !ok {
		return resolved{}, &ErrUnknownName{Kind: "field", Name: field}
	}

	base := uint64(bytesOf(sectionPtr.Address))
	rel := uint64(bytesOf(groupPtr.Address))
	off := uint64(bytesOf(fieldDef.Offset))

	addr := base + rel + off
	if addr > 0xFFFFFFFF {
		panic("schema: address arithmetic overflowed 4 bytes")
	}

	return resolved{addr: uint32(addr), field: fieldDef}, nil
}

// ResolveAddress computes the absolute 4-byte address for
// (section, group, field), and when symbol is non-nil, also the encoded
// value byte. If symbol names a known entry in the field's symbol map, that
// code is used; otherwise symbol is parsed as a raw integer and validated
// against the field's value range. The address always serialises to
// exactly 4 bytes, high-order zero padded.
func (s *Store) ResolveAddress(section, group, field string, symbol *string) ([4]byte, *byte, error) {
	r, err := s.resolve(section, group, field)
	if err != nil {
		return [4]byte{}, nil, err
	}

	var addrBytes [4]byte
	addrBytes[0] = byte(r.addr >> 24)
	addrBytes[1] = byte(r.addr >> 16)
	addrBytes[2] = byte(r.addr >> 8)
	addrBytes[3] = byte(r.addr)

	if symbol == nil {
		return addrBytes, nil, nil
	}

	if code, ok := r.field.Values[*symbol]; ok {
		v := byte(code)
		return addrBytes, &v, nil
	}

	raw, err := strconv.Atoi(*symbol)
	if err != nil {
		return [4]byte{}, nil, &ErrUnknownName{Kind: "symbol", Name: *symbol}
	}
	if raw < r.field.ValueRange[0] || raw > r.field.ValueRange[1] {
		return [4]byte{}, nil, fmt.Errorf("schema: value %d out of range [%d,%d] for %s/%s/%s",
			raw, r.field.ValueRange[0], r.field.ValueRange[1], section, group, field)
	}
	v := byte(raw)
	return addrBytes, &v, nil
}

// ValueRange returns the inclusive [lo, hi] numeric range of a field.
func (s *Store) ValueRange(section, group, field string) (lo, hi int, err error) {
	r, err := s.resolve(section, group, field)
	if err != nil {
		return 0, 0, err
	}
	return r.field.ValueRange[0], r.field.ValueRange[1], nil
}

// Decode maps a raw value byte back to its symbolic name, or returns the
// raw integer when the field has no symbol map (or the byte matches none
// of its entries).
func (s *Store) Decode(section, group, field string, value byte) (any, error) {
	r, err := s.resolve(section, group, field)
	if err != nil {
		return nil, err
	}

	for symbol, code := range r.field.Values {
		if code == int(value) {
			return symbol, nil
		}
	}

	return int(value), nil
}

// Symbols returns the symbol → code map of a field, used by the Effect
// Model to list the available type names for a TYPE field (list_types).
// The returned map is never mutated by the Store and must not be mutated
// by the caller.
func (s *Store) Symbols(section, group, field string) (map[string]int, error) {
	r, err := s.resolve(section, group, field)
	if err != nil {
		return nil, err
	}
	return r.field.Values, nil
}

// GroupsOf returns the names of all groups defined in the named container
// table, in no particular order. The Effect Model does not call it: its
// instance counts are fixed per category, with the fx count taken from the
// device model.
func (s *Store) GroupsOf(tableName string) ([]string, error) {
	table, ok := s.tables[tableName]
	if !ok {
		return nil, &ErrUnknownName{Kind: "table", Name: tableName}
	}

	names := make([]string, 0, len(table.Groups))
	for name := range table.Groups {
		names = append(names, name)
	}
	return names, nil
}

// SectionTable returns the table name backing a base-address section, so
// callers can in turn enumerate its groups via GroupsOf.
func (s *Store) SectionTable(section string) (string, error) {
	ptr, ok := s.baseAddresses[section]
	if !ok {
		return "", &ErrUnknownName{Kind: "section", Name: section}
	}
	return ptr.Table, nil
}
