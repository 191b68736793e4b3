// Package schema defines the portable document format for automata.
//
// A Document captures a state machine graph (states, transitions, encodings,
// guards and outputs), the sensor/actuator layout it is wired to, and the
// world parameters needed to run it. Documents round-trip through JSON or YAML
// and are rebuilt into a live machine through its factory methods:
//
//	doc, err := schema.Unmarshal(data, schema.FormatYAML)
//	if err != nil {
//	    return err
//	}
//	if err := schema.Validate(doc); err != nil {
//	    // err is an *AggregateError listing every problem found
//	}
//	m, mapping, err := schema.NewMachine(doc)
//
// Saved ids are only meaningful inside their document. Restore returns a
// Mapping from saved ids to the freshly created entities so collaborators
// (diagram layouts, for instance) can re-attach their own data.
package schema
