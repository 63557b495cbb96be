// ABOUTME: Stage grouper that partitions deals into pipeline stage buckets
// ABOUTME: Resolves each deal's contact from a lookup; a miss leaves the contact absent
package pipeline

import "github.com/harperreed/dealflow/models"

// StageBuckets maps every stage in the pipeline order to its deals, in input order.
type StageBuckets map[models.Stage][]models.Deal

// IndexContacts builds a lookup by contact ID. Later duplicates win.
func IndexContacts(contacts []models.Contact) map[string]models.Contact {
	index := make(map[string]models.Contact, len(contacts))
	for _, c := range contacts {
		index[c.ID] = c
	}
	return index
}

// GroupByStage partitions deals by stage. Every stage key is present, empty stages map to an
// empty slice. Deals with a stage outside the pipeline order are left out.
func GroupByStage(deals []models.Deal, contacts map[string]models.Contact) StageBuckets {
	buckets := newBuckets()

	for _, deal := range deals {
		if !deal.Stage.Valid() {
			continue
		}
		d := WithContact(deal, contacts)
		buckets[d.Stage] = append(buckets[d.Stage], d)
	}

	return buckets
}

// WithContact returns a copy of deal whose Contact comes from the lookup. A miss leaves
// the contact absent, even if the deal carried one.
func WithContact(deal models.Deal, contacts map[string]models.Contact) models.Deal {
	d := deal.Clone()
	d.Contact = nil
	if c, ok := contacts[deal.ContactID]; ok && deal.ContactID != "" {
		resolved := c.Clone()
		d.Contact = &resolved
	}
	return d
}

// Count returns the number of deals in stage.
func (b StageBuckets) Count(stage models.Stage) int {
	return len(b[stage])
}

// Flatten concatenates the buckets in pipeline order.
func (b StageBuckets) Flatten() []models.Deal {
	var out []models.Deal
	for _, stage := range models.Stages() {
		out = append(out, b[stage]...)
	}
	return out
}

func newBuckets() StageBuckets {
	buckets := make(StageBuckets, len(models.Stages()))
	for _, stage := range models.Stages() {
		buckets[stage] = []models.Deal{}
	}
	return buckets
}
