package mqtt

// Topics lists the topics of one fleet under a common prefix.
type Topics struct {
	Position string
	Control  string
	Register string
	Create   string
	prefix   string
}

// NewTopics returns the topic layout for prefix.
func NewTopics(prefix string) Topics {
	return Topics{
		Position: prefix + "/manager/position",
		Control:  prefix + "/manager/control",
		Register: prefix + "/manager/register",
		Create:   prefix + "/manager/create",
		prefix:   prefix,
	}
}

// Observer returns the topic reports are published on for observer name.
func (t Topics) Observer(name string) string {
	return t.prefix + "/observer/" + name + "/position"
}
