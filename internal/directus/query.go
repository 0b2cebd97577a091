package directus

import (
	"net/url"
	"strconv"
	"strings"
)

// Query describes one list request against a Directus collection.
// The zero value means "no filters, server default paging".
type Query struct {
	filters []queryFilter
	fields  []string
	sort    []string
	limit   int
	hasLim  bool
	offset  int
	hasOff  bool
	meta    string
}

type queryFilter struct {
	field string
	op    string
	value string
}

// Eq adds an equality filter: filter[field][_eq]=value.
func (q Query) Eq(field, value string) Query {
	q.filters = append(q.filters, queryFilter{field: field, op: "_eq", value: value})
	return q
}

// EqInt adds an equality filter on an integer value.
func (q Query) EqInt(field string, value int) Query {
	return q.Eq(field, strconv.Itoa(value))
}

// In adds a set-membership filter: filter[field][_in]=id1,id2,...
func (q Query) In(field string, ids []int) Query {
	q.filters = append(q.filters, queryFilter{field: field, op: "_in", value: joinIDs(ids)})
	return q
}

// NotIn adds a set-exclusion filter: filter[field][_nin]=id1,id2,...
func (q Query) NotIn(field string, ids []int) Query {
	q.filters = append(q.filters, queryFilter{field: field, op: "_nin", value: joinIDs(ids)})
	return q
}

// Fields restricts the returned fields.
func (q Query) Fields(fields ...string) Query {
	q.fields = append(q.fields, fields...)
	return q
}

// Sort appends a sort key. Prefix with "-" for descending.
func (q Query) Sort(key string) Query {
	q.sort = append(q.sort, key)
	return q
}

// Page sets limit and offset.
func (q Query) Page(limit, offset int) Query {
	q.limit = limit
	q.hasLim = true
	q.offset = offset
	q.hasOff = true
	return q
}

// Limit sets only the limit.
func (q Query) Limit(limit int) Query {
	q.limit = limit
	q.hasLim = true
	return q
}

// WithFilterCount requests meta=filter_count so the response carries the
// total number of matching records.
func (q Query) WithFilterCount() Query {
	q.meta = "filter_count"
	return q
}

// Values encodes the query as Directus URL parameters.
func (q Query) Values() url.Values {
	values := url.Values{}
	for _, f := range q.filters {
		values.Set("filter["+f.field+"]["+f.op+"]", f.value)
	}
	if len(q.fields) > 0 {
		values.Set("fields", strings.Join(q.fields, ","))
	}
	for _, s := range q.sort {
		values.Add("sort[]", s)
	}
	if q.hasLim {
		values.Set("limit", strconv.Itoa(q.limit))
	}
	if q.hasOff {
		values.Set("offset", strconv.Itoa(q.offset))
	}
	if q.meta != "" {
		values.Set("meta", q.meta)
	}
	return values
}

func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
