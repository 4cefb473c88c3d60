package handlers

// Socket.io delivers JSON payloads as map[string]interface{} with float64
// numbers; these helpers keep the handlers readable.

func argMap(args []interface{}) (map[string]interface{}, bool) {
	if len(args) < 1 {
		return nil, false
	}
	payload, ok := args[0].(map[string]interface{})
	return payload, ok
}

func getString(payload map[string]interface{}, key string) string {
	value, _ := payload[key].(string)
	return value
}

func getInt(payload map[string]interface{}, key string) (int, bool) {
	switch value := payload[key].(type) {
	case float64:
		return int(value), true
	case int:
		return value, true
	}
	return 0, false
}
