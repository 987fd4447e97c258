package model

// Scene is a host scene document as stored by the world collection.
type Scene struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	FolderID    *string `json:"folder"` // nil = root level
	Sort        int     `json:"sort"`
	Thumb       string  `json:"thumb,omitempty"`
	Background  string  `json:"background,omitempty"`
	Active      bool    `json:"active"`
	Navigation  bool    `json:"navigation"`
	GridType    int     `json:"gridType"` // 0 = gridless
	TokenVision bool    `json:"tokenVision"`
}

// SceneFolder is a host folder document of the world collection.
type SceneFolder struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"folder"` // nil = root level
	Color    string  `json:"color,omitempty"`
	Sort     int     `json:"sort"`
}

// NewSceneParams holds parameters for creating a new Scene.
type NewSceneParams struct {
	Name       string
	FolderID   *string
	Thumb      string
	Background string
}

// NewScene creates a Scene with a generated UUID.
func NewScene(params NewSceneParams) Scene {
	return Scene{
		ID:         NewID(),
		Name:       params.Name,
		FolderID:   params.FolderID,
		Thumb:      params.Thumb,
		Background: params.Background,
		Navigation: true,
	}
}

// NewFolderParams holds parameters for creating a new SceneFolder.
type NewFolderParams struct {
	Name     string
	ParentID *string
}

// NewFolder creates a SceneFolder with a generated UUID.
func NewFolder(params NewFolderParams) SceneFolder {
	return SceneFolder{
		ID:       NewID(),
		Name:     params.Name,
		ParentID: params.ParentID,
	}
}

// Store holds all scenes and folders of the world collection.
type Store struct {
	Folders []SceneFolder `json:"folders"`
	Scenes  []Scene       `json:"scenes"`
}

// NewStore creates an empty Store with initialized slices.
func NewStore() *Store {
	return &Store{
		Folders: []SceneFolder{},
		Scenes:  []Scene{},
	}
}

// GetFoldersInFolder returns folders with the given parent ID.
// Pass nil for root level folders.
func (s *Store) GetFoldersInFolder(parentID *string) []SceneFolder {
	var result []SceneFolder
	for _, f := range s.Folders {
		if ptrEqual(f.ParentID, parentID) {
			result = append(result, f)
		}
	}
	return result
}

// GetScenesInFolder returns scenes in the given folder.
// Pass nil for root level scenes.
func (s *Store) GetScenesInFolder(folderID *string) []Scene {
	var result []Scene
	for _, sc := range s.Scenes {
		if ptrEqual(sc.FolderID, folderID) {
			result = append(result, sc)
		}
	}
	return result
}

// GetFolderByID finds a folder by ID, returns nil if not found.
func (s *Store) GetFolderByID(id string) *SceneFolder {
	for i := range s.Folders {
		if s.Folders[i].ID == id {
			return &s.Folders[i]
		}
	}
	return nil
}

// GetSceneByID finds a scene by ID, returns nil if not found.
func (s *Store) GetSceneByID(id string) *Scene {
	for i := range s.Scenes {
		if s.Scenes[i].ID == id {
			return &s.Scenes[i]
		}
	}
	return nil
}

// AddScene appends a scene, placing it after the last scene of its folder.
func (s *Store) AddScene(sc Scene) {
	for _, other := range s.Scenes {
		if ptrEqual(other.FolderID, sc.FolderID) && other.Sort >= sc.Sort {
			sc.Sort = other.Sort + 1
		}
	}
	s.Scenes = append(s.Scenes, sc)
}

// AddFolder appends a folder.
func (s *Store) AddFolder(f SceneFolder) {
	s.Folders = append(s.Folders, f)
}

// RemoveScene deletes a scene by ID. Reports whether a scene was removed.
func (s *Store) RemoveScene(id string) bool {
	for i := range s.Scenes {
		if s.Scenes[i].ID == id {
			s.Scenes = append(s.Scenes[:i], s.Scenes[i+1:]...)
			return true
		}
	}
	return false
}
