package types

// Step records exchanged with the state machine. Field names are part of the
// workflow contract; unrecognized fields on an incoming record are preserved
// by the workflow package, not by these structs.

type DataUploadInput struct {
	JobType         string `json:"jobType"` // "train" or "transform"
	TimeRangeInDays int    `json:"timeRangeInDays"`
}

type DataUploadOutput struct {
	Bucket        string `json:"bucket"`
	Timestamp     string `json:"timestamp"`
	TimestampsKey string `json:"timestampsKey"`
	ValuesKey     string `json:"valuesKey"` // key prefix holding the values file
	ValuesFile    string `json:"valuesFile"`
}

type StartTrainingJobInput struct {
	Timestamp string `json:"timestamp"`
	Bucket    string `json:"bucket"`
	ValuesKey string `json:"valuesKey"`
}

type StartTrainingJobOutput struct {
	Timestamp         string `json:"timestamp"`
	TrainingJobName   string `json:"trainingJobName"`
	TrainingJobStatus string `json:"trainingJobStatus"`
	ModelOutputPath   string `json:"modelOutputPath"`
}

type StartTransformJobInput struct {
	Timestamp     string `json:"timestamp"`
	Bucket        string `json:"bucket"`
	TimestampsKey string `json:"timestampsKey"`
	ValuesKey     string `json:"valuesKey"`
	ValuesFile    string `json:"valuesFile"`
}

type StartTransformJobOutput struct {
	Bucket             string `json:"bucket"`
	Timestamp          string `json:"timestamp"`
	TimestampsKey      string `json:"timestampsKey"`
	AnomalyScoresKey   string `json:"anomalyScoresKey"`
	TransformJobName   string `json:"transformJobName"`
	TransformJobStatus string `json:"transformJobStatus"`
}

type AnomalousDataUploadInput struct {
	Bucket           string `json:"bucket"`
	AnomalyScoresKey string `json:"anomalyScoresKey"`
	TimestampsKey    string `json:"timestampsKey"`
}

type AnomalousDataUploadOutput struct {
	AnomalyCount int `json:"anomalyCount"`
}
