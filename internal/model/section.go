package model

// Section groups dining tables into areas of the restaurant
// (e.g. "Principal", "Terraza").  The first letter of the section
// name seeds the display names of the tables created inside it.
//
// Fields:
//  ID   – primary key identifier.
//  Name – unique section name.
type Section struct {
	ID   uint64 // sections.id
	Name string // sections.name
}
