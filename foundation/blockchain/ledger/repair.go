package ledger

// RepairReport describes what a repair pass changed.
type RepairReport struct {
	Corrupted  bool
	FirstIndex int
	Remined    int
}

// Repair scans the chain from genesis. The first block whose hash no longer
// meets its own difficulty is mined again. Every block after it is relinked
// to its predecessor's new hash and mined again, valid or not. The chain
// hash is then set to the tail's hash. When no block fails its own seal
// check the chain is left untouched.
//
// Repair produces a valid chain but leaves no record that tampering occurred.
func (l *Ledger) Repair() RepairReport {
	l.evHandler("ledger: Repair: started: size[%d]", len(l.blocks))

	report := RepairReport{FirstIndex: -1}

	for i, blk := range l.blocks {
		if report.Corrupted {
			blk.PreviousHash = l.blocks[i-1].Hash()
			blk.mine(l.evHandler)
			report.Remined++
			continue
		}

		if !blk.Solved() {
			l.evHandler("ledger: Repair: blk[%d]: corruption found", i)

			blk.mine(l.evHandler)
			report.Corrupted = true
			report.FirstIndex = i
			report.Remined++
		}
	}

	if report.Corrupted {
		l.chainHash = l.tail().Hash()
	}

	l.evHandler("ledger: Repair: completed: corrupted[%t]: remined[%d]", report.Corrupted, report.Remined)

	return report
}
