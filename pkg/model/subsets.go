package model

import (
	"log"
	"sync"
)

// SubsetTable holds, for every cardinality k in [0, days], all strictly increasing
// sequences of k day indices in lexicographic order. Tables are shared and read-only.
type SubsetTable struct {
	days    uint64
	subsets [][][]uint64
}

var subsetTables [MaxDays + 1]struct {
	once  sync.Once
	table *SubsetTable
}

// Subsets returns the table for a week of the given number of days, building it on first use
func Subsets(days uint64) *SubsetTable {
	if days > MaxDays {
		log.Panicf("cannot enumerate subsets of %v days, the maximum is %v", days, MaxDays)
	}
	entry := &subsetTables[days]
	entry.once.Do(func() {
		entry.table = newSubsetTable(days)
	})
	return entry.table
}

func newSubsetTable(days uint64) *SubsetTable {
	subsets := make([][][]uint64, days+1)
	subsets[0] = [][]uint64{{}}
	for cardinality := uint64(1); cardinality <= days; cardinality++ {
		subsets[cardinality] = make([][]uint64, 0, binomial(days, cardinality))
		// Extend every (k-1)-subset with each index greater than its last one
		for _, head := range subsets[cardinality-1] {
			first := uint64(0)
			if len(head) > 0 {
				first = head[len(head)-1] + 1
			}
			for day := first; day < days; day++ {
				subset := make([]uint64, len(head), len(head)+1)
				copy(subset, head)
				subsets[cardinality] = append(subsets[cardinality], append(subset, day))
			}
		}
	}
	return &SubsetTable{days: days, subsets: subsets}
}

func (table *SubsetTable) Days() uint64 {
	return table.days
}

// OfCardinality returns the subsets of the given size; callers must not modify them
func (table *SubsetTable) OfCardinality(cardinality uint64) [][]uint64 {
	if cardinality > table.days {
		log.Panicf("cardinality %v is out of range for %v days", cardinality, table.days)
	}
	return table.subsets[cardinality]
}

func binomial(n, k uint64) uint64 {
	if k > n {
		return 0
	}
	result := uint64(1)
	for i := range k {
		result = result * (n - i) / (i + 1)
	}
	return result
}
