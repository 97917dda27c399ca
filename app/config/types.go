package config

// Config is the complete YAML configuration of a run.
type Config struct {
	Portal     Portal `yaml:"portal"`
	OutputDir  string `yaml:"output_dir"`
	FeedPrefix string `yaml:"feed_prefix"`
	Merge      Merge  `yaml:"merge"`
	Users      []User `yaml:"users"`
}

// Portal describes the shift-scheduling portal shared by all users.
type Portal struct {
	Host           string `yaml:"host"`
	Timezone       string `yaml:"timezone"`
	DateFormat     string `yaml:"date_format"`
	LoginMarker    string `yaml:"login_marker"`
	OwnShiftMarker string `yaml:"own_shift_marker"`
	Timeout        int    `yaml:"timeout"` // seconds
	Pages          Pages  `yaml:"pages"`
}

type Pages struct {
	Login     string `yaml:"login"`
	ShiftList string `yaml:"shift_list"`
	Shift     string `yaml:"shift"`
}

type Merge struct {
	ContainByName bool `yaml:"contain_by_name"`
}

type User struct {
	Name      string `yaml:"name"` // output file name without extension
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	ShiftName string `yaml:"shift_name"`
	Feeds     []Feed `yaml:"feeds"`
}

// Feed is an external calendar merged into a user's shifts.
type Feed struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}
