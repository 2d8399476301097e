package domain

// Discrepancy is a transaction whose stored balance differs from the balance
// obtained by replaying every earlier movement of the same item.
type Discrepancy struct {
	TransactionID string
	Code          string
	Stored        Balance
	Expected      Balance
}

// Replay recomputes the running balance over txs, which must belong to a
// single item and be ordered by (date, id) ascending. Reset entries force the
// running balance to zero. It returns the final replayed balance and every row
// whose stored snapshot does not match.
func Replay(txs []*Transaction) (Balance, []Discrepancy) {
	running := ZeroBalance
	var out []Discrepancy

	for _, t := range txs {
		if t.IsReset() {
			running = ZeroBalance
		} else {
			running = Balance{
				Quantity: running.Quantity.Add(t.Net()),
				Count:    running.Count + t.CountDelta(),
			}
		}

		stored := t.Balance()
		if !stored.Quantity.Equal(running.Quantity) || stored.Count != running.Count {
			out = append(out, Discrepancy{
				TransactionID: t.ID,
				Code:          t.Code,
				Stored:        stored,
				Expected:      running,
			})
		}
	}

	return running, out
}
