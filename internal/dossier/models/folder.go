package models

// FolderGroup is a named bucket that organizes both required and uploaded
// documents. Every document on a dossier must reference a folder group the
// dossier declares.
type FolderGroup struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Ordinal int    `json:"ordinal"`
}

// Default folder group keys. Mirrored in the export manifest folder names.
const (
	FolderAchizitii    = "achizitii"
	FolderDepunere     = "depunere"
	FolderContractare  = "contractare"
	FolderImplementare = "implementare"
)

// DefaultFolderGroups returns the standard dossier folder taxonomy.
func DefaultFolderGroups() []FolderGroup {
	return []FolderGroup{
		{Key: FolderAchizitii, Name: "01_Achiziții", Ordinal: 1},
		{Key: FolderDepunere, Name: "02_Depunere", Ordinal: 2},
		{Key: FolderContractare, Name: "03_Contractare", Ordinal: 3},
		{Key: FolderImplementare, Name: "04_Implementare", Ordinal: 4},
	}
}
