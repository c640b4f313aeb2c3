package pipeline

// Unwrap removes at most one known envelope from a plugin payload. Checked in
// order: {success, response}, {data} and {results}; the last two only when no
// sibling "value" key exists. Anything else is returned unchanged.
//
// Plugins wrap payloads inconsistently, so the shape is sniffed rather than
// declared. A payload whose real content has a top-level "data" key is
// indistinguishable from a wrapper.
func Unwrap(payload any) any {
	obj, ok := payload.(map[string]any)
	if !ok {
		return payload
	}

	_, hasSuccess := obj["success"]
	if resp, hasResponse := obj["response"]; hasSuccess && hasResponse {
		return resp
	}

	if _, hasValue := obj["value"]; hasValue {
		return payload
	}
	if data, ok := obj["data"]; ok {
		return data
	}
	if results, ok := obj["results"]; ok {
		return results
	}
	return payload
}

// businessFailure reports a {success:false} body and its message.
func businessFailure(payload any) (string, bool) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return "", false
	}
	success, ok := obj["success"].(bool)
	if !ok || success {
		return "", false
	}
	for _, key := range []string{"message", "error", "detail"} {
		if msg, ok := obj[key].(string); ok && msg != "" {
			return msg, true
		}
	}
	if nested, ok := obj["error"].(map[string]any); ok {
		if msg, ok := nested["message"].(string); ok {
			return msg, true
		}
	}
	return "", true
}
