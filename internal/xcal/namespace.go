package xcal

import "github.com/beevik/etree"

// Namespace is the xCal (RFC 6321) namespace
const Namespace = "urn:ietf:params:xml:ns:icalendar-2.0"

// AddNamespace declares the xCal namespace as the default namespace of the document root
func AddNamespace(doc *etree.Document) {
	root := doc.Root()
	if root == nil {
		return
	}
	root.CreateAttr("xmlns", Namespace)
}
