package consolidation

import "fmt"

func identityKeys(record Assignment) (string, string) {
	return record.Url, fmt.Sprintf("%s::%s", record.Name, record.Class)
}

// Dedupe returns the subset of `candidate` not already represented in
// `primary`. A record is represented when either its url (if any) or
// its name+class composite appears in the primary set. The filter is
// order-preserving.
//
// One portal's "done" view incidentally reveals missing work (zero
// points plus a "not turned in" marker) that the dedicated missing view
// already captured; those must only be added once.
func Dedupe(primary []Assignment, candidate []Assignment) []Assignment {
	seen := make(map[string]struct{}, len(primary)*2)
	for _, record := range primary {
		urlKey, nameClassKey := identityKeys(record)
		if urlKey != "" {
			seen[urlKey] = struct{}{}
		}
		seen[nameClassKey] = struct{}{}
	}

	var out []Assignment
	for _, record := range candidate {
		urlKey, nameClassKey := identityKeys(record)
		if urlKey != "" {
			if _, ok := seen[urlKey]; ok {
				continue
			}
		}
		if _, ok := seen[nameClassKey]; ok {
			continue
		}

		// survivors join the seen set so a duplicate inside candidate
		// itself still only comes through once
		if urlKey != "" {
			seen[urlKey] = struct{}{}
		}
		seen[nameClassKey] = struct{}{}
		out = append(out, record)
	}
	return out
}
