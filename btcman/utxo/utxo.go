/*
This file contains filter/select operations on UTXO.
*/
package utxo

import (
	"sort"
)

// SelectUtxo picks UTXO(s) for spending, largest first, until their sum
// reaches target. The input slice is not modified.
//
// When the inputs cannot cover target every input is returned and total
// stays below target; the caller decides that this is insufficient.
func SelectUtxo(inputs []UTXO, target int64) ([]UTXO, int64) {
	sorted := SortDescending(inputs)

	var total int64
	chosen := make([]UTXO, 0, len(sorted))
	for _, item := range sorted {
		if total >= target {
			break
		}
		chosen = append(chosen, item)
		total += item.Amount
	}
	return chosen, total
}

// SortDescending returns a copy of inputs ordered by amount, largest
// first. Ties are ordered by outpoint so the result is deterministic.
func SortDescending(inputs []UTXO) []UTXO {
	sorted := make([]UTXO, len(inputs))
	copy(sorted, inputs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Amount != sorted[j].Amount {
			return sorted[i].Amount > sorted[j].Amount
		}
		if sorted[i].TxID != sorted[j].TxID {
			return sorted[i].TxID < sorted[j].TxID
		}
		return sorted[i].Vout < sorted[j].Vout
	})
	return sorted
}

// FilterByConfirmations keeps UTXO(s) with at least min confirmations.
// min <= 0 keeps everything, unconfirmed outputs included.
func FilterByConfirmations(inputs []UTXO, min int64) []UTXO {
	if min <= 0 {
		return inputs
	}
	out := make([]UTXO, 0, len(inputs))
	for _, item := range inputs {
		if item.Confirmations >= min {
			out = append(out, item)
		}
	}
	return out
}

// Sum adds up the amounts of inputs.
func Sum(inputs []UTXO) int64 {
	var sum int64
	for _, item := range inputs {
		sum += item.Amount
	}
	return sum
}
