package generator

import "fmt"

const systemPrompt = "You are a helpful assistant that generates mock data in JSON format."

// BuildPrompt renders the fixed instructional template. The interface texts
// are interpolated verbatim; nothing is parsed or validated here.
func BuildPrompt(sourceInterfaces, targetInterface string, size int) string {
	return fmt.Sprintf(`You are a mock data generator. Your task is to create realistic mock data based on the provided interface definitions, formatted as a JSON array suitable for a REST API endpoint.

Guidelines for mock generation:
1. Generate %d mock objects that strictly follow the target interface structure
2. Use realistic values that match the property types
3. For string fields, use meaningful text that represents real-world data
4. For number fields, use reasonable ranges based on the context
5. For boolean fields, use a mix of true and false values
6. For nested objects, maintain the same structure as defined in the interfaces
7. For arrays, include 2-5 items unless specified otherwise
8. For dates, use recent dates in ISO-8601 format (e.g., "2024-03-20T12:00:00Z")
9. For enums, use valid enum values
10. For optional fields, sometimes include them and sometimes omit them
11. All property names should be in camelCase
12. Ensure all values are valid JSON (no undefined, use null instead)

Available interfaces for context:
%s

Interface to generate mocks for:
%s

Your response must be a valid JSON array containing %d mock objects, ready to be used as a REST API endpoint response. Do not include any explanations, code fences, or additional text - just the JSON array.`,
		size, sourceInterfaces, targetInterface, size)
}
