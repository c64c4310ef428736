package domain

// DefaultWords is the built-in word list rounds draw from.
var DefaultWords = []string{
	"apple", "banana", "cat", "dog", "elephant", "fish", "giraffe",
	"house", "ice cream", "jacket", "kite", "lion", "monkey", "notebook",
	"orange", "pencil", "queen", "rabbit", "sun", "tree", "umbrella",
	"violin", "watermelon", "xylophone", "yacht", "zebra",
}
