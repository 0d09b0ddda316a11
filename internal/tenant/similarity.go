package tenant

// Similarity returns a normalized similarity score in [0,1] between two
// strings based on edit distance:
//
//	(max(len(a),len(b)) - levenshtein(a,b)) / max(len(a),len(b))
//
// Two empty strings score 1.0.
func Similarity(a, b string) float64 {
	longer, shorter := a, b
	if len(a) < len(b) {
		longer, shorter = b, a
	}
	if len(longer) == 0 {
		return 1.0
	}
	return float64(len(longer)-editDistance(longer, shorter)) / float64(len(longer))
}

// editDistance computes the Levenshtein distance between a and b using the
// full dynamic-programming matrix. Inputs are normalized ASCII so byte
// indexing is safe.
func editDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	rows, cols := len(b)+1, len(a)+1
	matrix := make([][]int, rows)
	for j := range matrix {
		matrix[j] = make([]int, cols)
	}
	for i := 0; i < cols; i++ {
		matrix[0][i] = i
	}
	for j := 0; j < rows; j++ {
		matrix[j][0] = j
	}

	for j := 1; j < rows; j++ {
		for i := 1; i < cols; i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			matrix[j][i] = min(
				matrix[j][i-1]+1,
				matrix[j-1][i]+1,
				matrix[j-1][i-1]+cost,
			)
		}
	}
	return matrix[len(b)][len(a)]
}
