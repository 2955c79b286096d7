package feedmanager

// agencyRowReader implements feedRowReader for agency.txt, keeping the ids
// of agencies on the allow-list. An empty allow-list keeps everything.
type agencyRowReader struct {
	allowed    map[string]struct{}
	agencyIds  map[string]struct{}
	keepAll    bool
	namesFound []string
}

func newAgencyRowReader(allowList []string) *agencyRowReader {
	allowed := make(map[string]struct{}, len(allowList))
	for _, name := range allowList {
		allowed[name] = struct{}{}
	}
	return &agencyRowReader{
		allowed:   allowed,
		agencyIds: map[string]struct{}{},
		keepAll:   len(allowList) == 0,
	}
}

func (r *agencyRowReader) addRow(parser *feedFileParser) error {
	id := parser.getString("agency_id", false)
	name := parser.getString("agency_name", false)
	r.namesFound = append(r.namesFound, name)
	if r.keepAll {
		r.agencyIds[id] = struct{}{}
		return nil
	}
	if _, ok := r.allowed[name]; ok {
		r.agencyIds[id] = struct{}{}
	}
	return nil
}
