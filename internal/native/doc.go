package native

import (
	"regexp"
	"strings"
)

var (
	returnsPrefix = regexp.MustCompile(`^returns\s+`)
	punctuation   = regexp.MustCompile(`[^\w\s]`)
	sequenceOf    = regexp.MustCompile(`^sequence of\s+`)
	sequenceTail  = regexp.MustCompile(`\s*sequence\s*$`)
	paramsPrefix  = regexp.MustCompile(`^parameters:\s*`)
	paramPunct    = regexp.MustCompile(`[^\w\s,\[\]]`)
	optionalParam = regexp.MustCompile(`\[([^\]]+)\]`)
)

// docNames maps prose used in doc text to class names.
var docNames = []struct{ prose, class string }{
	{"floating point number", "float"},
	{"character", "str"},
	{"integer", "int"},
	{"dictionary", "dict"},
	{"string", "str"},
}

// ParseDoc extracts parameter names and the return class from a signature
// line such as "S.count(sub[, start[, end]]) -> int". Either result may be
// empty.
func ParseDoc(doc string) (params []string, ret string) {
	doc = strings.Join(strings.Fields(doc), " ")
	if doc == "" {
		return nil, ""
	}

	paramText := doc
	if arrow := strings.Index(doc, "->"); arrow >= 0 {
		paramText = doc[:arrow]
		ret = strings.TrimSpace(doc[arrow+2:])
		ret = returnsPrefix.ReplaceAllString(strings.ToLower(ret), "")
		ret = punctuation.ReplaceAllString(ret, "")
		for _, n := range docNames {
			ret = strings.ReplaceAll(ret, n.prose, n.class)
		}
		ret = sequenceOf.ReplaceAllString(ret, "")
		ret = sequenceTail.ReplaceAllString(ret, "")
		// only the leading word names a class
		if fields := strings.Fields(ret); len(fields) > 0 {
			ret = fields[0]
		} else {
			ret = ""
		}
	}

	// drop the callee name in front of the parameter list
	if open := strings.Index(paramText, "("); open >= 0 {
		paramText = paramText[open+1:]
		if end := strings.LastIndex(paramText, ")"); end >= 0 {
			paramText = paramText[:end]
		}
	}
	if strings.TrimSpace(paramText) == "" {
		return nil, ret
	}
	paramText = paramsPrefix.ReplaceAllString(strings.ToLower(paramText), "")
	paramText = paramPunct.ReplaceAllString(paramText, "")
	for _, p := range strings.Split(paramText, ",") {
		p = strings.TrimSpace(optionalParam.ReplaceAllString(p, "$1"))
		p = strings.Trim(p, "[] ")
		if p != "" {
			params = append(params, p)
		}
	}
	return params, ret
}
