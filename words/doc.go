/*
Package words prepares free-text answers for word clouds.

Tokens normalizes one answer into a lazy sequence of kept tokens: lowercase,
URLs removed, punctuation other than apostrophes replaced by spaces, tokens
shorter than three characters and stop words dropped.

	for tok := range words.Tokens("Visit https://x.co NOW!! so good") {
		fmt.Println(tok) // visit, good
	}

Frequencies ranks terms across many answers:

	terms := words.Frequencies(texts, words.DefaultTopN)

Weights are raw occurrence counts. Scaling them to font sizes is the
renderer's job.
*/
package words
