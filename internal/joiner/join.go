package joiner

// reduce performs the join-and-reduce step shared by NJ and BIONJ: row a
// absorbs row b's information into the new cluster's distances, row totals
// are updated incrementally, and row b is removed from the matrix (and, in
// the BIONJ/Bounding case, from the variance matrix too). Returns the new
// cluster's id. Assumes 0 <= a < b < D.RowCount().
func (j *Joiner) reduce(a, b int) int {
	n := j.D.RowCount()
	nless2 := float64(n - 2)
	tMultiplier := 0.0
	if n >= 3 {
		tMultiplier = 0.5 / nless2
	}
	medianLength := 0.5 * j.D.Get(a, b)
	fudge := (j.D.RowTotal(a) - j.D.RowTotal(b)) * tMultiplier
	aLength := medianLength + fudge
	bLength := medianLength - fudge

	lambda := 0.5
	var vab float64
	if j.variant != NJ {
		vab = j.V.Get(a, b)
		lambda = j.chooseLambda(a, b, vab)
	}
	mu := 1.0 - lambda
	dCorrection := -lambda*aLength - mu*bLength

	for i := 0; i < n; i++ {
		if i == a || i == b {
			continue
		}
		dai := j.D.Get(a, i)
		dbi := j.D.Get(b, i)
		dci := lambda*dai + mu*dbi + dCorrection
		j.D.Set(a, i, dci)
		j.D.Set(i, a, dci)
		j.D.AddRowTotal(i, dci-dai-dbi)
		if j.variant == NJ {
			// NJMatrix::cluster keeps rowTotals[a] incrementally up to
			// date as it goes.
			j.D.AddRowTotal(a, dci-dai)
		}

		if j.variant != NJ {
			vai := j.V.Get(a, i)
			vbi := j.V.Get(b, i)
			vci := lambda*vai + mu*vbi - lambda*mu*vab
			j.V.Set(a, i, vci)
			j.V.Set(i, a, vci)
		}
	}
	if j.variant == NJ {
		j.D.AddRowTotal(a, -j.D.Get(a, b))
	} else {
		// BIONJMatrix::cluster instead recomputes rowTotals[a] directly
		// from the new row, rather than correcting it incrementally; row
		// b's (removed) distance is excluded by construction since the
		// sum below only ranges over indices other than a and b.
		replacementRowTotal := 0.0
		for i := 0; i < n; i++ {
			if i != a && i != b {
				replacementRowTotal += j.D.Get(a, i)
			}
		}
		j.D.SetRowTotal(a, replacementRowTotal)
	}

	newCluster := j.Forest.Join(j.rowToCluster[a], aLength, j.rowToCluster[b], bLength)
	j.rowToCluster[a] = newCluster
	j.rowToCluster[b] = j.rowToCluster[n-1]
	j.D.RemoveRow(b)
	if j.variant != NJ {
		j.V.RemoveRow(b)
	}
	return newCluster
}

// chooseLambda implements BIONJ's variance-weighted mixing coefficient
// (Gascuel 1997): lambda moves away from the 0.5 NJ midpoint in proportion
// to how much more informative b's existing distances are than a's,
// relative to the variance of the pair being joined, clamped to [0,1].
func (j *Joiner) chooseLambda(a, b int, vab float64) float64 {
	if vab == 0.0 {
		return 0.5
	}
	n := j.D.RowCount()
	lambda := 0.0
	for i := 0; i < n; i++ {
		if i != a && i != b {
			lambda += j.V.Get(b, i) - j.V.Get(a, i)
		}
	}
	lambda = 0.5 + lambda/(2.0*float64(n-2)*vab)
	if lambda > 1.0 {
		lambda = 1.0
	}
	if lambda < 0.0 {
		lambda = 0.0
	}
	return lambda
}

// finishTernary appends the final, unrooted 3-way cluster once only three
// rows remain, splitting the three pairwise distances among them by the
// standard unrooted 3-taxon formula, and returns its id.
func (j *Joiner) finishTernary() int {
	halfD01 := 0.5 * j.D.Get(0, 1)
	halfD02 := 0.5 * j.D.Get(0, 2)
	halfD12 := 0.5 * j.D.Get(1, 2)
	return j.Forest.JoinTernary(
		j.rowToCluster[0], halfD01+halfD02-halfD12,
		j.rowToCluster[1], halfD01+halfD12-halfD02,
		j.rowToCluster[2], halfD02+halfD12-halfD01,
	)
}
