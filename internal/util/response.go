package util

type Envelope map[string]any

func Error(message string) Envelope {
	return Envelope{"success": false, "error": message}
}

func Success(message string, data any) Envelope {
	e := Envelope{"success": true, "message": message}
	if data != nil {
		e["data"] = data
	}
	return e
}

func Data(key string, value any) Envelope {
	return Envelope{key: value}
}
