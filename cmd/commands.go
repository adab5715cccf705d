package cmd

const (
	helpTemperature = "What sampling temperature to use. Higher values means the model will take more risks. " +
		"Try 0.9 for more creative applications, and 0 (argmax sampling) for ones with a well-defined answer. " +
		"Mutually exclusive with `top_p`."
	helpTopP = "An alternative to sampling with temperature, called nucleus sampling, where the model considers " +
		"the results of the tokens with top_p probability mass. So 0.1 means only the tokens comprising the " +
		"top 10% probability mass are considered. Mutually exclusive with `temperature`."
	helpStream = "Stream tokens as they're ready."
	helpStop   = "A stop sequence at which to stop generating tokens."
)

func idOption(help string) Option {
	return Option{Name: "id", Short: "i", Required: true, Help: help}
}

// Commands is every subcommand, in the order they are listed in help.
var Commands = []Command{
	// engines
	{
		Name:    "engines.list",
		Short:   "List engines",
		Handler: engineList,
	},
	{
		Name:    "engines.get",
		Short:   "Retrieve an engine",
		Options: []Option{idOption("The engine ID")},
		Handler: engineGet,
	},
	{
		Name:  "engines.update",
		Short: "Update an engine's replica count",
		Options: []Option{
			idOption("The engine ID"),
			{Name: "replicas", Short: "r", Type: TypeInt, Help: "Number of replicas"},
		},
		Handler: engineUpdate,
	},
	{
		Name:  "engines.generate",
		Short: "Generate text with an engine (deprecated, use completions.create)",
		Options: []Option{
			idOption("The engine ID"),
			{Name: "stream", Type: TypeBool, Help: helpStream},
			{Name: "context", Short: "c", Help: "An optional context to generate from"},
			{Name: "length", Short: "l", Type: TypeInt, Help: "How many tokens to generate"},
			{Name: "temperature", Short: "t", Type: TypeFloat, Help: helpTemperature},
			{Name: "top_p", Short: "p", Type: TypeFloat, Help: helpTopP},
			{Name: "completions", Short: "n", Type: TypeInt, Help: "How many parallel completions to run on this context"},
			{Name: "logprobs", Type: TypeInt, Help: "Include the log probabilities on the `logprobs` most likely tokens. " +
				"If `logprobs` is supplied, the API will always return the logprob of the generated token, " +
				"so there may be up to `logprobs+1` elements in the response."},
			{Name: "stop", Help: helpStop},
			{Name: "model", Short: "m", Help: "A model (most commonly a snapshot ID) to generate from. Defaults to the engine's default snapshot."},
		},
		Handler: engineGenerate,
	},
	{
		Name:  "engines.search",
		Short: "Rank documents against a query",
		Options: []Option{
			idOption("The engine ID"),
			{Name: "documents", Short: "d", Type: TypeStrings, Help: "List of documents to search over. Only one of `documents` or `file` may be supplied."},
			{Name: "file", Short: "f", Help: "A file id to search over. Only one of `documents` or `file` may be supplied."},
			{Name: "max_rerank", Type: TypeInt, Default: 200, Help: "The maximum number of documents to be re-ranked and returned by search. " +
				"This flag only takes effect when `file` is set."},
			{Name: "return_metadata", Type: TypeBoolArg, Default: false, Help: "Show the metadata of each document entry. " +
				"This flag only takes effect when `file` is set."},
			{Name: "query", Short: "q", Required: true, Help: "Search query"},
		},
		Exclusive: [][]string{{"documents", "file"}},
		Handler:   engineSearch,
	},

	// completions
	{
		Name:  "completions.create",
		Short: "Create a completion",
		Options: []Option{
			{Name: "engine", Short: "e", Required: true, Help: "The engine to use"},
			{Name: "stream", Type: TypeBool, Help: helpStream},
			{Name: "prompt", Short: "p", Help: "An optional prompt to complete from"},
			{Name: "max-tokens", Short: "M", Type: TypeInt, Help: "The maximum number of tokens to generate"},
			{Name: "temperature", Short: "t", Type: TypeFloat, Help: helpTemperature},
			{Name: "top_p", Short: "P", Type: TypeFloat, Help: helpTopP},
			{Name: "n", Short: "n", Type: TypeInt, Help: "How many sub-completions to generate for each prompt."},
			{Name: "logprobs", Type: TypeInt, Help: "Include the log probabilities on the `logprobs` most likely tokens, as well the chosen tokens. " +
				"If `logprobs` is 0, only the chosen tokens will have logprobs returned."},
			{Name: "stop", Help: helpStop},
		},
		Handler: completionCreate,
	},

	// snapshots
	{
		Name:    "snapshots.list",
		Short:   "List snapshots",
		Handler: snapshotList,
	},
	{
		Name:  "snapshots.get",
		Short: "Retrieve a snapshot",
		Options: []Option{
			{Name: "engine", Short: "e", Help: "The engine this snapshot is running on"},
			idOption("The snapshot ID"),
			{Name: "timeout", Short: "t", Type: TypeFloat, Help: "An optional amount of time to block for the snapshot to transition from pending. " +
				"If the timeout expires, a pending snapshot will be returned."},
		},
		Handler: snapshotGet,
	},
	{
		Name:    "snapshots.delete",
		Short:   "Delete a snapshot",
		Options: []Option{idOption("The snapshot ID")},
		Handler: snapshotDelete,
	},

	// files
	{
		Name:  "files.create",
		Short: "Upload a file",
		Options: []Option{
			{Name: "file", Short: "f", Required: true, Help: "File to upload"},
			{Name: "purpose", Short: "p", Required: true, Help: "Why are you uploading this file? (see https://beta.openai.com/docs/api-reference/ for purposes)"},
		},
		Handler: fileCreate,
	},
	{
		Name:    "files.get",
		Short:   "Retrieve a file",
		Options: []Option{idOption("The files ID")},
		Handler: fileGet,
	},
	{
		Name:    "files.delete",
		Short:   "Delete a file",
		Options: []Option{idOption("The files ID")},
		Handler: fileDelete,
	},
	{
		Name:    "files.list",
		Short:   "List files",
		Handler: fileList,
	},

	// fine-tunes
	{
		Name:    "fine_tunes.list",
		Short:   "List fine-tune jobs",
		Handler: fineTuneList,
	},
	{
		Name:  "fine_tunes.create",
		Short: "Start a fine-tune job",
		Options: []Option{
			{Name: "train_file", Short: "t", Required: true, Help: "File to train"},
			{Name: "test_file", Help: "File to test"},
			{Name: "base_model", Short: "b", Help: "The model name to start the run from"},
			{Name: "hparams", Short: "p", Help: "Hyperparameter JSON"},
		},
		Handler: fineTuneCreate,
	},
	{
		Name:    "fine_tunes.get",
		Short:   "Retrieve a fine-tune job",
		Options: []Option{idOption("The id of the fine-tune job")},
		Handler: fineTuneGet,
	},
	{
		Name:    "fine_tunes.events",
		Short:   "List the events of a fine-tune job",
		Options: []Option{idOption("The id of the fine-tune job")},
		Handler: fineTuneEvents,
	},
	{
		Name:    "fine_tunes.cancel",
		Short:   "Cancel a fine-tune job",
		Options: []Option{idOption("The id of the fine-tune job")},
		Handler: fineTuneCancel,
	},

	// tokens
	{
		Name:  "tokens.count_tokens",
		Short: "Count the tokens of a text",
		Options: []Option{
			{Name: "text", Short: "t", Required: true, Help: "The text to tokenize"},
		},
		Handler: tokensCount,
	},
}
