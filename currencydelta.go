package poolcore

// CurrencyDeltaLedger is an external deferred-settlement registry: a
// mapping (target, currency) → signed 128-bit amount, with a
// nonzero-count watermark so the owning registry can refuse teardown
// while any account is still unsettled. The pool engine itself never
// reads or writes this ledger; it is wired by the caller around
// ModifyLiquidity/Swap results.
type CurrencyDeltaLedger struct {
	deltas      map[currencyDeltaKey]Int128
	nonzeroSize int
}

type currencyDeltaKey struct {
	target   [20]byte
	currency [20]byte
}

// NewCurrencyDeltaLedger returns an empty ledger.
func NewCurrencyDeltaLedger() *CurrencyDeltaLedger {
	return &CurrencyDeltaLedger{deltas: make(map[currencyDeltaKey]Int128)}
}

// Get returns the current delta for (target, currency), or the
// canonical zero if untouched.
func (l *CurrencyDeltaLedger) Get(target, currency [20]byte) Int128 {
	key := currencyDeltaKey{target: target, currency: currency}
	if d, ok := l.deltas[key]; ok {
		return d
	}
	return ZeroInt128()
}

// Apply adds delta to the (target, currency) entry and maintains the
// nonzero-count watermark, removing the entry entirely once it returns
// to zero so NonzeroCount stays exact.
func (l *CurrencyDeltaLedger) Apply(target, currency [20]byte, delta Int128) Int128 {
	key := currencyDeltaKey{target: target, currency: currency}
	current, existed := l.deltas[key]
	if !existed {
		current = ZeroInt128()
	}
	updated := Add128(current, delta)

	switch {
	case existed && !current.IsZero() && updated.IsZero():
		delete(l.deltas, key)
		l.nonzeroSize--
	case !existed && !updated.IsZero():
		l.deltas[key] = updated
		l.nonzeroSize++
	case existed && !updated.IsZero():
		l.deltas[key] = updated
	}
	return updated
}

// NonzeroCount reports how many (target, currency) pairs currently
// carry a nonzero delta. A registry refuses teardown while this is
// nonzero.
func (l *CurrencyDeltaLedger) NonzeroCount() int {
	return l.nonzeroSize
}
