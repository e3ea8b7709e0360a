package weights

// Kind tells how a weight component is distributed.
type Kind string

const (
	// KindFile is a single checkpoint fetched over HTTP
	KindFile Kind = "file"
	// KindRepo is a model repository cloned with git
	KindRepo Kind = "repo"
)

// MinWeightFileSize is the smallest size a real checkpoint can have.
// Failed downloads tend to leave tiny HTML error pages behind, so
// anything at or under this is treated as missing.
const MinWeightFileSize = 1000000

// Component is one entry of the weights catalog.
type Component struct {
	Name string
	Kind Kind

	// Dir is the directory under weights/ holding the component
	Dir string

	// Filename and URL describe a KindFile checkpoint
	Filename string
	URL      string

	// RepoURL is the git remote of a KindRepo component, cloned into
	// Dir under the repository's own name
	RepoURL string
}

// DefaultCatalog returns the components of the published BioM3 release:
// the three stage checkpoints plus the two language models the pipeline
// embeds prompts and sequences with.
func DefaultCatalog() []Component {
	return []Component{
		{
			Name:     "PenCL",
			Kind:     KindFile,
			Dir:      "PenCL",
			Filename: "BioM3_PenCL_epoch20.bin",
			URL:      "https://huggingface.co/niksapraljak1/BioM3_PenCL/resolve/main/BioM3_PenCL_epoch20.bin",
		},
		{
			Name:     "Facilitator",
			Kind:     KindFile,
			Dir:      "Facilitator",
			Filename: "BioM3_Facilitator_epoch20.bin",
			URL:      "https://huggingface.co/niksapraljak1/BioM3_Facilitator/resolve/main/BioM3_Facilitator_epoch20.bin",
		},
		{
			Name:     "ProteoScribe",
			Kind:     KindFile,
			Dir:      "ProteoScribe",
			Filename: "BioM3_ProteoScribe_pfam_epoch20_v1.bin",
			URL:      "https://huggingface.co/niksapraljak1/BioM3_ProteoScribe/resolve/main/BioM3_ProteoScribe_pfam_epoch20_v1.bin",
		},
		{
			Name:    "ESM2",
			Kind:    KindRepo,
			Dir:     "LLMs",
			RepoURL: "https://huggingface.co/facebook/esm2_t33_650M_UR50D",
		},
		{
			Name:    "PubMedBERT",
			Kind:    KindRepo,
			Dir:     "LLMs",
			RepoURL: "https://huggingface.co/microsoft/BiomedNLP-PubMedBERT-base-uncased-abstract-fulltext",
		},
	}
}
