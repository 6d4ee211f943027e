package completeness

// Aggregate rolls the per-domain statuses up into a global status over every
// registered domain. Domains missing from the map count as pending.
func (r *Registry) Aggregate(statuses map[Domain]Status) Status {
	if len(r.order) == 0 {
		return StatusPending
	}

	completed := 0
	started := false
	for _, domain := range r.order {
		switch statuses[domain] {
		case StatusCompleted:
			completed++
			started = true
		case StatusInProgress:
			started = true
		}
	}

	switch {
	case completed == len(r.order):
		return StatusCompleted
	case started:
		return StatusInProgress
	default:
		return StatusPending
	}
}

// Aggregate rolls statuses up against the default registry.
func Aggregate(statuses map[Domain]Status) Status {
	return Default().Aggregate(statuses)
}

// Summary is the derived status cache for one record.
type Summary struct {
	Status  Status
	Domains map[Domain]Result
}

// DomainStatuses projects the per-domain results onto their statuses.
func (s Summary) DomainStatuses() map[Domain]Status {
	out := make(map[Domain]Status, len(s.Domains))
	for domain, result := range s.Domains {
		out[domain] = result.Status
	}
	return out
}

// Summarize evaluates every registered domain in blobs and aggregates the
// result. blobs is keyed by domain name; missing domains evaluate as empty.
func (r *Registry) Summarize(blobs map[string]interface{}) Summary {
	summary := Summary{Domains: make(map[Domain]Result, len(r.order))}
	for _, domain := range r.order {
		var data map[string]interface{}
		if raw, ok := findBlob(blobs, domain); ok {
			data, _ = asMap(raw)
		}
		summary.Domains[domain] = r.Evaluate(string(domain), data)
	}
	summary.Status = r.Aggregate(summary.DomainStatuses())
	return summary
}

func findBlob(blobs map[string]interface{}, domain Domain) (interface{}, bool) {
	if blobs == nil {
		return nil, false
	}
	raw, ok := blobs[string(domain)]
	return raw, ok
}
