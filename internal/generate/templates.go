package generate

// Templates are the canned prompts offered by the template picker
var Templates = []string{
	"A futuristic cityscape at night",
	"A cat wearing sunglasses and drinking coffee",
	"A scenic mountain landscape with sunrise",
	"A robot painting on a canvas",
	"An astronaut riding a horse on Mars",
}
