// Package dataset holds the proverb records served by the bot.
//
// A Dataset is built once at startup from a Source and is never mutated
// afterwards, so it can be read from concurrent handlers without locking.
package dataset

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrEmptyDataset is returned when a source yields no records.
	ErrEmptyDataset = errors.New("dataset: no proverbs loaded")
	// ErrInvalidID is returned when a record has a non-positive id.
	ErrInvalidID = errors.New("dataset: proverb id must be positive")
	// ErrDuplicateID is returned when two records share an id.
	ErrDuplicateID = errors.New("dataset: duplicate proverb id")
)

// Record is a single proverb entry.
type Record struct {
	ID          int64  `json:"id" db:"id"`
	Proverb     string `json:"proverb" db:"proverb"`
	Translation string `json:"translation" db:"translation"`
	Wisdom      string `json:"wisdom" db:"wisdom"`
}

// Source loads the raw records of a dataset.
type Source interface {
	Load(ctx context.Context) ([]Record, error)
}

// Dataset is an immutable, ordered collection of records with an id index.
type Dataset struct {
	records []Record
	byID    map[int64]int
}

// New validates records and builds a Dataset. The slice is copied.
func New(records []Record) (*Dataset, error) {
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}
	ds := &Dataset{
		records: make([]Record, len(records)),
		byID:    make(map[int64]int, len(records)),
	}
	copy(ds.records, records)
	for i, r := range ds.records {
		if r.ID <= 0 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidID, r.ID)
		}
		if _, dup := ds.byID[r.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, r.ID)
		}
		ds.byID[r.ID] = i
	}
	return ds, nil
}

// Load reads all records from src and builds a Dataset.
func Load(ctx context.Context, src Source) (*Dataset, error) {
	if src == nil {
		return nil, errors.New("dataset: nil source")
	}
	records, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("dataset: load: %w", err)
	}
	return New(records)
}

// All returns the records in load order. Callers must not modify the slice.
func (d *Dataset) All() []Record {
	return d.records
}

// Len reports the number of records.
func (d *Dataset) Len() int {
	return len(d.records)
}

// ByID returns the record with the given id.
func (d *Dataset) ByID(id int64) (Record, bool) {
	i, ok := d.byID[id]
	if !ok {
		return Record{}, false
	}
	return d.records[i], true
}
