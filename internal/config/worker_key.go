package config

type WorkerKeyStruct struct {
	ArchiveResultsQueue string
	PersistFlagsQueue   string
}

var WorkerKey = &WorkerKeyStruct{
	ArchiveResultsQueue: "archive_results_queue",
	PersistFlagsQueue:   "persist_flags_queue",
}
