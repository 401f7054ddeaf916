package models

// NoticeField is one name/value row of a notice
type NoticeField struct {
	Name   string
	Value  string
	Inline bool
}

// Notice is an embed-style message: the welcome announcement, the
// reaction-role message and command replies all use it
type Notice struct {
	Title        string
	Description  string
	Color        int
	ThumbnailURL string
	Fields       []NoticeField
	Card         []byte // Optional PNG attachment
	CardName     string
}

// Field returns the field with the given name, or nil
func (n *Notice) Field(name string) *NoticeField {
	for i := range n.Fields {
		if n.Fields[i].Name == name {
			return &n.Fields[i]
		}
	}
	return nil
}

// AddField appends a field
func (n *Notice) AddField(name, value string, inline bool) {
	n.Fields = append(n.Fields, NoticeField{Name: name, Value: value, Inline: inline})
}
