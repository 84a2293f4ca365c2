package dataset

import "strings"

// weatherCSV is the classic 14-instance "play tennis" table (9 yes / 5 no).
const weatherCSV = `outlook,temperature,humidity,windy,play
sunny,hot,high,false,no
sunny,hot,high,true,no
overcast,hot,high,false,yes
rainy,mild,high,false,yes
rainy,cool,normal,false,yes
rainy,cool,normal,true,no
overcast,cool,normal,true,yes
sunny,mild,high,false,no
sunny,cool,normal,false,yes
rainy,mild,normal,false,yes
sunny,mild,normal,true,yes
overcast,mild,high,true,yes
overcast,hot,normal,false,yes
rainy,mild,high,true,no
`

// weatherNumericCSV is the same table with continuous temperature and humidity.
const weatherNumericCSV = `outlook,temperature,humidity,windy,play
sunny,85,85,false,no
sunny,80,90,true,no
overcast,83,86,false,yes
rainy,70,96,false,yes
rainy,68,80,false,yes
rainy,65,70,true,no
overcast,64,65,true,yes
sunny,72,95,false,no
sunny,69,70,false,yes
rainy,75,80,false,yes
sunny,75,70,true,yes
overcast,72,90,true,yes
overcast,81,75,false,yes
rainy,71,91,true,no
`

// Weather returns the nominal play-tennis dataset with target "play".
func Weather() *Dataset {
	return mustSample(weatherCSV, "play")
}

// WeatherNumeric returns the mixed play-tennis dataset with target "play".
func WeatherNumeric() *Dataset {
	return mustSample(weatherNumericCSV, "play")
}

// WeatherRegression returns the mixed play-tennis dataset with the
// continuous "temperature" attribute as target.
func WeatherRegression() *Dataset {
	return mustSample(weatherNumericCSV, "temperature")
}

func mustSample(src, target string) *Dataset {
	ds, err := ReadCSV(strings.NewReader(src), target, false)
	if err != nil {
		panic("dataset: invalid built-in sample: " + err.Error())
	}

	return ds
}
